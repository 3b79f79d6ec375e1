package practice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"drum-practice/score"
)

// Tempo limits
const (
	MinTempo     = 40
	MaxTempo     = 300
	DefaultTempo = 120
)

// ClampTempo limits bpm to MinTempo..MaxTempo
func ClampTempo(bpm int) int {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}

// State is the session's run state
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Result is the outcome of one run
type Result struct {
	score.Result

	RunID     uuid.UUID
	Source    string
	Port      string // empty when the run had no capture
	Tempo     int
	Started   time.Time
	Finished  time.Time
	Completed bool // reached the end of the part rather than being stopped
	Performed []score.PerformedEvent
}

// Recorder stores finished runs
type Recorder interface {
	Record(ctx context.Context, r Result) error
}

// Snapshot is a copy of the session state for display
type Snapshot struct {
	State      State
	Position   Position
	Tempo      int
	Tolerance  float64
	Source     string
	Port       string
	Kit        string
	Notes      []score.ExpectedNote
	Performed  int
	Last       *Result
	CaptureErr error
}
