package midi

import (
	"errors"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Receiver is called for every raw message an input port delivers
type Receiver func(msg gomidi.Message, timestampms int32)

// Driver is the part of a MIDI backend the capture channel needs
type Driver interface {
	// InPorts lists input port names
	InPorts() ([]string, error)
	// Listen starts delivering messages from the named port to recv
	Listen(port string, recv Receiver) (stop func(), err error)
}

// ErrPortScanTimeout is returned when the MIDI backend does not answer a
// port enumeration in time (CoreMIDI can hang)
var ErrPortScanTimeout = errors.New("midi port scan timed out")

// scanTimeout bounds a port enumeration
const scanTimeout = 3 * time.Second

// portDriver talks to whichever gomidi driver is registered
type portDriver struct {
	timeout time.Duration
}

// NewDriver returns a Driver backed by the registered gomidi driver.
// The binary must import a driver package (rtmididrv) for ports to appear.
func NewDriver() Driver {
	return portDriver{timeout: scanTimeout}
}

func (d portDriver) inPorts() ([]drivers.In, error) {
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	select {
	case ins := <-ch:
		return ins, nil
	case <-time.After(d.timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, ErrPortScanTimeout
	}
}

func (d portDriver) InPorts() ([]string, error) {
	ins, err := d.inPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

func (d portDriver) Listen(port string, recv Receiver) (func(), error) {
	ins, err := d.inPorts()
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		if in.String() != port {
			continue
		}
		stop, err := gomidi.ListenTo(in, recv)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		return stop, nil
	}
	return nil, fmt.Errorf("input %q went away", port)
}

// ListDevices returns the input port names. No ports is not an error.
func ListDevices(d Driver) ([]string, error) {
	names, err := d.InPorts()
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// CloseDriver releases the registered gomidi driver
func CloseDriver() {
	gomidi.CloseDriver()
}
