package practice

import (
	"time"

	"drum-practice/metrics"
	"drum-practice/midi"
	"drum-practice/notation"
)

// Option configures a Session
type Option func(*Session)

// WithDriver sets the MIDI backend used for capture
func WithDriver(d midi.Driver) Option {
	return func(s *Session) {
		s.driver = d
	}
}

// WithExtractor sets the notation source used by Load
func WithExtractor(x notation.Extractor) Option {
	return func(s *Session) {
		if x != nil {
			s.extractor = x
		}
	}
}

// WithKit sets the trigger-to-label mapping
func WithKit(k midi.Kit) Option {
	return func(s *Session) {
		s.kit = k
	}
}

// WithTolerance sets the scoring window in beats
func WithTolerance(t float64) Option {
	return func(s *Session) {
		if t > 0 {
			s.tolerance = t
		}
	}
}

// WithTempo sets the initial tempo
func WithTempo(bpm int) Option {
	return func(s *Session) {
		if bpm > 0 {
			s.tempo = ClampTempo(bpm)
		}
	}
}

// WithPort sets the capture input port; empty picks the first port
func WithPort(name string) Option {
	return func(s *Session) {
		s.port = name
	}
}

// WithRecorder stores every finished run
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithMetrics records run metrics
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithClockOptions passes options to the playback clock
func WithClockOptions(opts ...ClockOption) Option {
	return func(s *Session) {
		s.clockOpts = append(s.clockOpts, opts...)
	}
}

// WithPollRate sets how often the capture device is checked for removal
func WithPollRate(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.pollRate = d
		}
	}
}
