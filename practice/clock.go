package practice

import (
	"sync"
	"time"

	"drum-practice/debug"
)

// Position is the clock's place in the part
type Position struct {
	Index int
	Total int
}

// Ticker is the source of clock ticks
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// ClockOption configures a Clock
type ClockOption func(*Clock)

// WithTicker replaces the wall-clock ticker
func WithTicker(newTicker func(time.Duration) Ticker) ClockOption {
	return func(c *Clock) {
		if newTicker != nil {
			c.newTicker = newTicker
		}
	}
}

// Period returns the tick period for a tempo: one beat, in whole milliseconds
func Period(bpm int) time.Duration {
	return time.Duration(60000/bpm) * time.Millisecond
}

// Clock advances a beat index once per beat period. It is the only writer
// of the index; readers use Beat or Position.
//
// Ticks are handled one at a time on the clock's goroutine. When a tick
// finds the index already at the end of the part the clock goes idle and
// calls onEnd on that goroutine; otherwise it advances and calls onTick.
type Clock struct {
	mu       sync.Mutex
	index    int
	total    int
	bpm      int
	running  bool
	stopChan chan struct{}
	done     chan struct{}

	onTick    func(Position)
	onEnd     func()
	newTicker func(time.Duration) Ticker
}

// NewClock creates an idle clock. Either callback may be nil.
func NewClock(onTick func(Position), onEnd func(), opts ...ClockOption) *Clock {
	c := &Clock{
		onTick:    onTick,
		onEnd:     onEnd,
		newTicker: newTimeTicker,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start resets the index and begins ticking at bpm over a part of total notes
func (c *Clock) Start(bpm, total int) error {
	if total <= 0 {
		return ErrNoNotesLoaded
	}
	if bpm <= 0 {
		return ErrInvalidTempo
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true
	c.index = 0
	c.total = total
	c.bpm = bpm
	c.stopChan = make(chan struct{})
	c.done = make(chan struct{})
	stop, done := c.stopChan, c.done
	c.mu.Unlock()

	ticker := c.newTicker(Period(bpm))
	debug.Log("clock", "start bpm=%d period=%s total=%d", bpm, Period(bpm), total)
	go c.tickLoop(ticker, stop, done)
	return nil
}

// Stop halts ticking and waits for an in-flight tick to finish. It reports
// whether the clock was running. Safe to call when idle and from onEnd.
func (c *Clock) Stop() bool {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return false
	}
	c.running = false
	close(c.stopChan)
	done := c.done
	c.mu.Unlock()

	<-done
	debug.Log("clock", "stopped")
	return true
}

func (c *Clock) tickLoop(ticker Ticker, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
		}

		c.mu.Lock()
		if !c.running {
			c.mu.Unlock()
			return
		}
		if c.index >= c.total {
			c.running = false
			c.mu.Unlock()
			debug.Log("clock", "end of part")
			if c.onEnd != nil {
				c.onEnd()
			}
			return
		}
		c.index++
		pos := Position{Index: c.index, Total: c.total}
		c.mu.Unlock()

		if c.onTick != nil {
			c.onTick(pos)
		}
	}
}

// Beat returns the index of the most recently completed tick
func (c *Clock) Beat() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.index)
}

// Position returns the current index and part length
func (c *Clock) Position() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Position{Index: c.index, Total: c.total}
}

// Running reports whether the clock is ticking
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Tempo returns the tempo of the current or last run
func (c *Clock) Tempo() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bpm
}
