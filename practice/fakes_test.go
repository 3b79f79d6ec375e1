package practice

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"drum-practice/midi"
)

// fakeDriver is an in-memory MIDI backend
type fakeDriver struct {
	mu        sync.Mutex
	ports     []string
	recv      map[string]midi.Receiver
	listenErr error
	stops     int
}

func newFakeDriver(ports ...string) *fakeDriver {
	return &fakeDriver{ports: ports, recv: make(map[string]midi.Receiver)}
}

func (d *fakeDriver) InPorts() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.ports), nil
}

func (d *fakeDriver) Listen(port string, recv midi.Receiver) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listenErr != nil {
		return nil, d.listenErr
	}
	d.recv[port] = recv
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.recv, port)
		d.stops++
	}, nil
}

// send delivers msg as if the device had played it. It reports whether
// anything was listening.
func (d *fakeDriver) send(port string, msg gomidi.Message) bool {
	d.mu.Lock()
	recv := d.recv[port]
	d.mu.Unlock()
	if recv == nil {
		return false
	}
	recv(msg, 0)
	return true
}

func (d *fakeDriver) hit(port string, note uint8) bool {
	return d.send(port, gomidi.NoteOn(9, note, 100))
}

func (d *fakeDriver) unplug(port string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ports = slices.DeleteFunc(d.ports, func(p string) bool { return p == port })
}

func (d *fakeDriver) stopCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stops
}

func (d *fakeDriver) listening(port string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recv[port] != nil
}

// manualTicker only fires when the test says so
type manualTicker struct {
	c      chan time.Time
	mu     sync.Mutex
	period time.Duration
	halted bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.halted = true
	t.mu.Unlock()
}

func (t *manualTicker) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.halted
}

// tickers hands out manual tickers and remembers the latest
type tickers struct {
	mu   sync.Mutex
	last *manualTicker
}

func (f *tickers) new(d time.Duration) Ticker {
	t := &manualTicker{c: make(chan time.Time), period: d}
	f.mu.Lock()
	f.last = t
	f.mu.Unlock()
	return t
}

func (f *tickers) current() *manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// tick fires the latest ticker once. The send blocks until the clock
// goroutine takes the tick.
func (f *tickers) tick(t *testing.T) {
	t.Helper()
	mt := f.current()
	if mt == nil {
		t.Fatal("no ticker")
	}
	select {
	case mt.c <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("clock did not take the tick")
	}
}

// recorder collects finished runs
type recorder struct {
	mu   sync.Mutex
	runs []Result
	err  error

	// gate, when set, holds Record until it is closed
	gate chan struct{}
}

func (r *recorder) Record(ctx context.Context, res Result) error {
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, res)
	return r.err
}

func (r *recorder) all() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.runs)
}

var errBusy = errors.New("port busy")
