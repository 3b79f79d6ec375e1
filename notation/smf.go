package notation

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"slices"

	"gitlab.com/gomidi/midi/v2/smf"

	"drum-practice/midi"
	"drum-practice/score"
)

// drumChannel is MIDI channel 10, zero based
const drumChannel = 9

// MIDIExtractor reads kick, snare and hi-hat hits from a Standard MIDI File
type MIDIExtractor struct {
	Kit midi.Kit
}

// ExtractMIDI reads path with the General MIDI kit
func ExtractMIDI(path string) (Sheet, error) {
	return MIDIExtractor{Kit: midi.DefaultKit()}.Extract(path)
}

type rawHit struct {
	tick    uint64
	channel uint8
	key     uint8
}

// Extract implements Extractor. Note-ons on the drum channel are used when
// there are any; otherwise every channel is read. Times are in quarter-note
// beats.
func (x MIDIExtractor) Extract(path string) (Sheet, error) {
	s, err := readSMF(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Sheet{}, &ExtractionError{Path: path, Reason: "file not found", Err: err}
		}
		return Sheet{}, &ExtractionError{Path: path, Reason: "unreadable content", Err: err}
	}

	ppq, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || ppq == 0 {
		return Sheet{}, &ExtractionError{Path: path, Reason: "unsupported time format"}
	}

	var sheet Sheet
	var raw []rawHit
	drumChannelUsed := false

	for _, track := range s.Tracks {
		var absTicks uint64
		for _, ev := range track {
			absTicks += uint64(ev.Delta)

			var bpm float64
			if sheet.Tempo == 0 && ev.Message.GetMetaTempo(&bpm) {
				sheet.Tempo = int(math.Round(bpm))
				continue
			}

			var channel, key, velocity uint8
			if ev.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0 {
				raw = append(raw, rawHit{tick: absTicks, channel: channel, key: key})
				if channel == drumChannel {
					drumChannelUsed = true
				}
			}
		}
	}

	for _, h := range raw {
		if drumChannelUsed && h.channel != drumChannel {
			continue
		}
		label, ok := x.Kit.Lookup(h.key)
		if !ok {
			continue
		}
		sheet.Notes = append(sheet.Notes, score.ExpectedNote{
			Time:  float64(h.tick) / float64(ppq),
			Label: label,
		})
	}

	// Tracks are read one after another; merge them onto one timeline
	slices.SortStableFunc(sheet.Notes, func(a, b score.ExpectedNote) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})

	return sheet, nil
}

// readSMF loads a MIDI file. gomidi can panic on malformed input, so the
// panic is turned into an error.
func readSMF(path string) (s *smf.SMF, err error) {
	defer func() {
		if r := recover(); r != nil {
			s = nil
			err = fmt.Errorf("malformed midi file: %v", r)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return smf.ReadFrom(bytes.NewReader(data))
}
