package midi

import (
	"context"
	"sort"
	"sync"
	"time"

	"drum-practice/debug"
)

// DeviceEvent is emitted when input ports appear or disappear
type DeviceEvent struct {
	Type DeviceEventType
	Port string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// DeviceManager handles hot-plug detection of MIDI inputs
type DeviceManager struct {
	driver   Driver
	ports    map[string]bool
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration
}

// ManagerOption configures a DeviceManager
type ManagerOption func(*DeviceManager)

// WithPollRate sets how often ports are rescanned
func WithPollRate(d time.Duration) ManagerOption {
	return func(dm *DeviceManager) {
		if d > 0 {
			dm.pollRate = d
		}
	}
}

// WithKnownPorts marks ports as already present, so the first scan reports
// them as disconnected if they are gone
func WithKnownPorts(names ...string) ManagerOption {
	return func(dm *DeviceManager) {
		for _, name := range names {
			dm.ports[name] = true
		}
	}
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(d Driver, opts ...ManagerOption) *DeviceManager {
	dm := &DeviceManager{
		driver:   d,
		ports:    make(map[string]bool),
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
	}
	for _, opt := range opts {
		opt(dm)
	}
	return dm
}

// Events returns a channel of connect/disconnect events. It is closed when
// Run returns.
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Ports returns a sorted snapshot of the ports seen by the last scan
func (dm *DeviceManager) Ports() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	names := make([]string, 0, len(dm.ports))
	for name := range dm.ports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()
	defer close(dm.events)

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	names, err := dm.driver.InPorts()
	if err != nil {
		// Backend is hung or gone - skip this scan
		debug.Log("devices", "scan failed: %v", err)
		return
	}

	seen := make(map[string]bool, len(names))
	var events []DeviceEvent

	dm.mu.Lock()
	for _, name := range names {
		seen[name] = true
		if !dm.ports[name] {
			events = append(events, DeviceEvent{Type: DeviceConnected, Port: name})
		}
	}
	for name := range dm.ports {
		if !seen[name] {
			events = append(events, DeviceEvent{Type: DeviceDisconnected, Port: name})
		}
	}
	dm.ports = seen
	dm.mu.Unlock()

	for _, ev := range events {
		debug.Log("devices", "%s %q", ev.Type, ev.Port)
		select {
		case dm.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
