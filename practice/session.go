// Package practice runs a practice session: a playback clock walks the
// loaded part one beat at a time while hits from a MIDI input are recorded,
// and the run is scored when it stops.
package practice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"drum-practice/debug"
	"drum-practice/metrics"
	"drum-practice/midi"
	"drum-practice/notation"
	"drum-practice/score"
)

// recordTimeout bounds a Recorder write
const recordTimeout = 5 * time.Second

// Session owns the loaded part, the clock and the capture for one player.
//
// Lock order: ctrl, then the capture's lock, then the clock's lock, then mu.
// The clock calls back into the session without holding its own lock.
type Session struct {
	// ctrl serialises Load, Start, Stop and Close
	ctrl sync.Mutex

	mu         sync.Mutex
	state      State
	expected   []score.ExpectedNote
	performed  []score.PerformedEvent
	position   Position
	source     string
	tempo      int
	tolerance  float64
	port       string
	kit        midi.Kit
	run        *run
	last       *Result
	captureErr error

	clock     *Clock
	clockOpts []ClockOption
	driver    midi.Driver
	extractor notation.Extractor
	recorder  Recorder
	metrics   *metrics.Manager
	pollRate  time.Duration

	// records tracks Recorder writes still in flight
	records sync.WaitGroup

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// run is the bookkeeping for one Start..Stop cycle
type run struct {
	id      uuid.UUID
	started time.Time
	tempo   int

	capture   *midi.Capture // guarded by Session.mu
	finishing bool          // guarded by Session.mu
	cancel    context.CancelFunc
	consumed  chan struct{} // closed when no more hits will be appended
	done      chan struct{} // closed once the result is published
}

// NewSession creates an idle session with nothing loaded
func NewSession(opts ...Option) *Session {
	s := &Session{
		tempo:      DefaultTempo,
		tolerance:  score.DefaultTolerance,
		kit:        midi.DefaultKit(),
		extractor:  notation.Default,
		pollRate:   time.Second,
		UpdateChan: make(chan struct{}, 1),
	}
	s.driver = midi.NewDriver()
	for _, opt := range opts {
		opt(s)
	}
	s.clock = NewClock(s.clockTicked, s.clockEnded, s.clockOpts...)
	return s
}

// Load extracts a part from the document at path and makes it current.
// A failed extraction leaves the session untouched. A running run is
// stopped before the part is replaced.
func (s *Session) Load(path string) error {
	sheet, err := s.extractor.Extract(path)
	if err != nil {
		debug.Log("session", "load %q failed: %v", path, err)
		return err
	}
	s.LoadSheet(path, sheet)
	return nil
}

// LoadSheet makes an already extracted part current
func (s *Session) LoadSheet(source string, sheet notation.Sheet) {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.stop()

	s.mu.Lock()
	s.expected = slices.Clone(sheet.Notes)
	s.performed = nil
	s.position = Position{Total: len(sheet.Notes)}
	s.source = source
	s.last = nil
	s.captureErr = nil
	if sheet.Tempo > 0 {
		s.tempo = ClampTempo(sheet.Tempo)
	}
	s.mu.Unlock()

	debug.Log("session", "loaded %q notes=%d tempo hint=%d", source, len(sheet.Notes), sheet.Tempo)
	s.notifyUpdate()
}

// SetTempo changes the tempo for the next run
func (s *Session) SetTempo(bpm int) error {
	if bpm <= 0 {
		return ErrInvalidTempo
	}
	s.mu.Lock()
	if s.run != nil {
		s.mu.Unlock()
		return ErrRunning
	}
	s.tempo = ClampTempo(bpm)
	s.mu.Unlock()

	s.notifyUpdate()
	return nil
}

// SetPort selects the capture input for the next run. Empty picks the
// first available port.
func (s *Session) SetPort(name string) {
	s.mu.Lock()
	s.port = name
	s.mu.Unlock()
	s.notifyUpdate()
}

// SetKit changes the trigger mapping for the next run
func (s *Session) SetKit(k midi.Kit) {
	s.mu.Lock()
	s.kit = k
	s.mu.Unlock()
	s.notifyUpdate()
}

// Start begins a run over the loaded part. The clock starts first; if the
// capture device cannot be opened the run carries on without capture and
// the error is reported through Snapshot.CaptureErr.
func (s *Session) Start() error {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.mu.Lock()
	if s.run != nil {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	total := len(s.expected)
	if total == 0 {
		s.mu.Unlock()
		debug.Log("session", "start refused: no notes loaded")
		return ErrNoNotesLoaded
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		id:       uuid.New(),
		started:  time.Now(),
		tempo:    s.tempo,
		cancel:   cancel,
		consumed: make(chan struct{}),
		done:     make(chan struct{}),
	}
	port, kit := s.port, s.kit
	s.performed = nil
	s.position = Position{Total: total}
	s.captureErr = nil
	s.run = r
	s.state = Running
	s.mu.Unlock()

	if err := s.clock.Start(r.tempo, total); err != nil {
		cancel()
		s.mu.Lock()
		s.run = nil
		s.state = Idle
		s.mu.Unlock()
		return err
	}

	debug.Log("session", "run %s started bpm=%d notes=%d", r.id, r.tempo, total)
	s.metrics.RunStarted()
	s.openCapture(ctx, r, port, kit)
	s.notifyUpdate()
	return nil
}

func (s *Session) openCapture(ctx context.Context, r *run, port string, kit midi.Kit) {
	if s.driver == nil {
		s.captureFailed(r, midi.ErrDeviceUnavailable)
		close(r.consumed)
		return
	}

	c, err := midi.Open(s.driver, port, kit, s.clock.Beat)
	if err != nil {
		s.captureFailed(r, err)
		close(r.consumed)
		return
	}

	s.mu.Lock()
	if r.finishing {
		// The part ended while the port was opening
		s.mu.Unlock()
		c.Close()
	} else {
		r.capture = c
		s.mu.Unlock()
		go s.watchDevice(ctx, r, c)
	}
	go s.consume(r, c)
}

// consume is the single writer of performed while a run is active
func (s *Session) consume(r *run, c *midi.Capture) {
	defer close(r.consumed)

	for hit := range c.Hits() {
		s.mu.Lock()
		if s.run == r {
			s.performed = append(s.performed, score.PerformedEvent{Time: hit.Beat, Label: hit.Label})
		}
		s.mu.Unlock()

		debug.Log("capture", "hit %s note=%d vel=%d beat=%.0f", hit.Label, hit.Note, hit.Velocity, hit.Beat)
		s.metrics.HitCaptured(hit.Label)
		s.notifyUpdate()
	}
	s.metrics.HitsDropped(c.Dropped())
}

// watchDevice closes the capture if its port disappears mid-run
func (s *Session) watchDevice(ctx context.Context, r *run, c *midi.Capture) {
	dm := midi.NewDeviceManager(s.driver, midi.WithPollRate(s.pollRate), midi.WithKnownPorts(c.Port()))
	go dm.Run(ctx)

	for ev := range dm.Events() {
		if ev.Type != midi.DeviceDisconnected || ev.Port != c.Port() {
			continue
		}
		s.captureFailed(r, fmt.Errorf("%w: %q", midi.ErrDeviceDisconnected, c.Port()))
		c.Close()
	}
}

func (s *Session) captureFailed(r *run, err error) {
	reason := "open"
	switch {
	case errors.Is(err, midi.ErrDeviceDisconnected):
		reason = "disconnected"
	case errors.Is(err, midi.ErrDeviceUnavailable):
		reason = "unavailable"
	}
	debug.Log("session", "run %s continues without capture: %v", r.id, err)
	s.metrics.CaptureFailed(reason)

	s.mu.Lock()
	if s.run == r {
		s.captureErr = err
	}
	s.mu.Unlock()
	s.notifyUpdate()
}

func (s *Session) clockTicked(pos Position) {
	s.mu.Lock()
	s.position = pos
	s.mu.Unlock()

	s.metrics.Tick()
	s.notifyUpdate()
}

func (s *Session) clockEnded() {
	s.mu.Lock()
	r := s.run
	s.mu.Unlock()

	if r != nil {
		s.finish(r, true)
	}
}

// finish tears a run down: halt the clock, close the capture and drain its
// queue, score, publish. Only the first caller for a run does the work.
func (s *Session) finish(r *run, completed bool) {
	s.mu.Lock()
	if s.run != r || r.finishing {
		s.mu.Unlock()
		return
	}
	r.finishing = true
	c := r.capture
	s.mu.Unlock()

	s.clock.Stop()
	if c != nil {
		c.Close()
	}
	r.cancel()
	<-r.consumed

	s.mu.Lock()
	expected := s.expected
	performed := slices.Clone(s.performed)
	res := Result{
		RunID:     r.id,
		Source:    s.source,
		Tempo:     r.tempo,
		Started:   r.started,
		Finished:  time.Now(),
		Completed: completed,
		Performed: performed,
	}
	if c != nil {
		res.Port = c.Port()
	}
	s.mu.Unlock()

	res.Result = score.Match(expected, performed, s.tolerance)

	s.mu.Lock()
	s.last = &res
	s.run = nil
	s.state = Idle
	s.mu.Unlock()
	close(r.done)

	debug.Log("session", "run %s finished completed=%t hits=%d/%d accuracy=%.1f",
		r.id, completed, res.Hits, res.Total, res.Accuracy)
	s.metrics.RunFinished(completed, res.Accuracy)
	s.notifyUpdate()

	if s.recorder != nil {
		s.records.Add(1)
		go s.record(res)
	}
}

// record writes a finished run off the caller's goroutine so Stop never
// waits on storage
func (s *Session) record(res Result) {
	defer s.records.Done()

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := s.recorder.Record(ctx, res); err != nil {
		debug.Log("session", "record run %s: %v", res.RunID, err)
	}
}

// Stop ends the current run and returns its result. When idle it returns
// the last result, or a zero Result if there has been no run.
func (s *Session) Stop() Result {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()
	return s.stop()
}

func (s *Session) stop() Result {
	s.mu.Lock()
	r := s.run
	s.mu.Unlock()

	if r != nil {
		s.finish(r, false)
		<-r.done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}
	}
	return *s.last
}

// Running reports whether a run is active
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run != nil
}

// Wait blocks until the current run has published its result or ctx is
// done. It returns immediately when idle.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	r := s.run
	s.mu.Unlock()

	if r == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:      s.state,
		Position:   s.position,
		Tempo:      s.tempo,
		Tolerance:  s.tolerance,
		Source:     s.source,
		Port:       s.port,
		Kit:        s.kit.Name,
		Notes:      slices.Clone(s.expected),
		Performed:  len(s.performed),
		CaptureErr: s.captureErr,
	}
	if s.run != nil {
		snap.Tempo = s.run.tempo
		if s.run.capture != nil {
			snap.Port = s.run.capture.Port()
		}
	}
	if s.last != nil {
		last := *s.last
		snap.Last = &last
	}
	return snap
}

// Close stops any run and waits for pending Recorder writes. The session
// can still be used afterwards.
func (s *Session) Close() error {
	s.Stop()
	s.records.Wait()
	return nil
}

// notifyUpdate wakes the TUI without blocking
func (s *Session) notifyUpdate() {
	select {
	case s.UpdateChan <- struct{}{}:
	default:
	}
}
