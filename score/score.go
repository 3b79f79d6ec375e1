// Package score compares a performed hit list against the notated part.
package score

import "math"

// Drum labels produced by notation extraction
const (
	Kick  = "kick"
	Snare = "snare"
	HiHat = "hi-hat"
)

// DefaultTolerance is the hit window in beats (either side of the note)
const DefaultTolerance = 0.25

// ExpectedNote is a notated hit
type ExpectedNote struct {
	Time  float64 // beats
	Label string
}

// PerformedEvent is a captured hit, stamped with the beat it arrived on
type PerformedEvent struct {
	Time  float64 // beats
	Label string
}

// Result is the outcome of matching a performance against the part
type Result struct {
	Hits     int
	Total    int
	Accuracy float64 // 0-100
	Claimed  []bool  // per expected note, in expected order
}

// Match pairs performed events with expected notes.
//
// Matching is greedy and follows input order: each performed event claims the
// first unclaimed expected note with the same label inside the tolerance
// window, even when a later note would be a closer fit. Each expected note is
// claimed at most once. Events that claim nothing are ignored.
func Match(expected []ExpectedNote, performed []PerformedEvent, tolerance float64) Result {
	res := Result{
		Total:   len(expected),
		Claimed: make([]bool, len(expected)),
	}
	if len(expected) == 0 {
		return res
	}

	for _, p := range performed {
		for i, e := range expected {
			if res.Claimed[i] {
				continue
			}
			if e.Label == p.Label && math.Abs(e.Time-p.Time) <= tolerance {
				res.Claimed[i] = true
				res.Hits++
				break
			}
		}
	}

	res.Accuracy = 100.0 * float64(res.Hits) / float64(res.Total)
	return res
}

// Score returns the accuracy percentage of performed against expected.
// An empty part scores 0.
func Score(expected []ExpectedNote, performed []PerformedEvent, tolerance float64) float64 {
	return Match(expected, performed, tolerance).Accuracy
}
