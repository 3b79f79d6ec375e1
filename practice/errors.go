package practice

import "errors"

var (
	// ErrNoNotesLoaded is returned when a run is started with an empty part
	ErrNoNotesLoaded = errors.New("no notes loaded")
	// ErrAlreadyRunning is returned by Start during a run
	ErrAlreadyRunning = errors.New("run already in progress")
	// ErrRunning is returned by settings that can only change while idle
	ErrRunning = errors.New("cannot change while running")
	// ErrInvalidTempo is returned for a non-positive tempo
	ErrInvalidTempo = errors.New("tempo must be positive")
)
