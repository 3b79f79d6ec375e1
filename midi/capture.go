package midi

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"

	"drum-practice/debug"
)

var (
	// ErrDeviceUnavailable means no input port matched the requested device
	ErrDeviceUnavailable = errors.New("midi device unavailable")
	// ErrDeviceDisconnected means the capture port went away mid-run
	ErrDeviceDisconnected = errors.New("midi device disconnected")
)

// DeviceOpenError means the port was listed but could not be listened to
type DeviceOpenError struct {
	Port string
	Err  error
}

func (e *DeviceOpenError) Error() string {
	return fmt.Sprintf("open midi device %q: %v", e.Port, e.Err)
}

func (e *DeviceOpenError) Unwrap() error {
	return e.Err
}

// hitBuffer bounds the queue between the driver callback and the consumer
const hitBuffer = 64

// Capture forwards drum hits from one input port. Each hit is stamped with
// the beat source's value at arrival.
type Capture struct {
	port string
	kit  Kit
	beat func() float64

	mu     sync.Mutex
	stop   func()
	closed bool
	hits   chan Hit

	dropped atomic.Uint64
}

// Open starts capturing from the named input port. An empty name picks the
// first port the driver lists.
func Open(d Driver, port string, kit Kit, beat func() float64) (*Capture, error) {
	names, err := d.InPorts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	found := false
	for _, name := range names {
		if port == "" || name == port {
			port = name
			found = true
			break
		}
	}
	if !found {
		if port == "" {
			return nil, fmt.Errorf("%w: no input ports", ErrDeviceUnavailable)
		}
		return nil, fmt.Errorf("%w: %q", ErrDeviceUnavailable, port)
	}

	c := &Capture{
		port: port,
		kit:  kit,
		beat: beat,
		hits: make(chan Hit, hitBuffer),
	}

	stop, err := d.Listen(port, c.receive)
	if err != nil {
		return nil, &DeviceOpenError{Port: port, Err: err}
	}

	c.mu.Lock()
	c.stop = stop
	c.mu.Unlock()

	debug.Log("capture", "opened %q kit=%s", port, kit.Name)
	return c, nil
}

// receive runs on the driver's callback goroutine and must not block
func (c *Capture) receive(msg gomidi.Message, timestampms int32) {
	var channel, note, velocity uint8
	if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	hit := Hit{
		Beat:     c.beat(),
		Label:    c.kit.Label(note),
		Channel:  channel,
		Note:     note,
		Velocity: velocity,
	}

	select {
	case c.hits <- hit:
	default:
		c.dropped.Add(1)
		debug.LogEvery(16, "capture", "hit queue full, dropping")
	}
}

// Port returns the input port name
func (c *Capture) Port() string {
	return c.port
}

// Hits delivers captured hits in arrival order. It is closed by Close.
func (c *Capture) Hits() <-chan Hit {
	return c.hits
}

// Dropped returns how many hits were lost to a full queue
func (c *Capture) Dropped() uint64 {
	return c.dropped.Load()
}

// Close stops listening. It is safe to call more than once and when the
// device has already disappeared. No hit is delivered after Close returns.
func (c *Capture) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.hits)
	stop := c.stop
	c.stop = nil
	c.mu.Unlock()

	// The driver may wait on an in-flight callback, which needs c.mu
	if stop != nil {
		stop()
	}
	debug.Log("capture", "closed %q dropped=%d", c.port, c.Dropped())
	return nil
}
