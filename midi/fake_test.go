package midi

import (
	"errors"
	"slices"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type fakeDriver struct {
	mu        sync.Mutex
	ports     []string
	recv      map[string]Receiver
	scanErr   error
	listenErr error
	stops     int
}

func newFakeDriver(ports ...string) *fakeDriver {
	return &fakeDriver{ports: ports, recv: make(map[string]Receiver)}
}

func (d *fakeDriver) InPorts() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.scanErr != nil {
		return nil, d.scanErr
	}
	return slices.Clone(d.ports), nil
}

func (d *fakeDriver) Listen(port string, recv Receiver) (func(), error) {
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

func (d *fakeDriver) send(port string, msg gomidi.Message) {
	d.mu.Lock()
	recv := d.recv[port]
	d.mu.Unlock()
	if recv != nil {
		recv(msg, 0)
	}
}

func (d *fakeDriver) setPorts(ports ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ports = ports
}

var errBusy = errors.New("port busy")
