package core

import (
	"errors"
	"testing"
)

// MockGPIODriver is a test implementation of GPIODriver
type MockGPIODriver struct {
	pins       map[GPIOPin]bool
	configured map[GPIOPin]bool
	writes     int
	failPin    GPIOPin
}

func NewMockGPIODriver() *MockGPIODriver {
	return &MockGPIODriver{
		pins:       make(map[GPIOPin]bool),
		configured: make(map[GPIOPin]bool),
		failPin:    NoPin,
	}
}

var errMockPin = errors.New("mock: pin write failed")

func (m *MockGPIODriver) ConfigureOutput(pin GPIOPin) error {
	m.configured[pin] = true
	m.pins[pin] = false
	return nil
}

func (m *MockGPIODriver) SetPin(pin GPIOPin, value bool) error {
	if pin == m.failPin {
		return errMockPin
	}
	m.pins[pin] = value
	m.writes++
	return nil
}

func (m *MockGPIODriver) Pin(pin GPIOPin) bool {
	return m.pins[pin]
}

// mockTrigger counts pulses
type mockTrigger struct {
	fired int
}

func (m *mockTrigger) Fire() {
	m.fired++
}

func TestGatePinsConfiguredLow(t *testing.T) {
	gpio := NewMockGPIODriver()
	cfg := DefaultConfig()
	cfg.GatePin = 10
	cfg.TrackGatePins[2] = 12

	if _, err := NewSequencer(cfg, newFakeTimer(), gpio); err != nil {
		t.Fatalf("NewSequencer failed: %v", err)
	}

	for _, pin := range []GPIOPin{10, 12} {
		if !gpio.configured[pin] {
			t.Errorf("Pin %d not configured as output", pin)
		}
		if gpio.Pin(pin) {
			t.Errorf("Pin %d should start low", pin)
		}
	}
	if gpio.configured[NoPin] {
		t.Errorf("NoPin must never be configured")
	}
}

func TestGateErrorsCounted(t *testing.T) {
	gpio := NewMockGPIODriver()
	gpio.failPin = 10
	cfg := DefaultConfig()
	cfg.GatePin = 10

	sq, err := NewSequencer(cfg, newFakeTimer(), gpio)
	if err != nil {
		t.Fatalf("NewSequencer failed: %v", err)
	}
	before := sq.Clock().Stats().GateErrors
	sq.Play()

	stats := sq.Clock().Stats()
	if stats.GateErrors <= before {
		t.Errorf("Expected gate error to be counted, got %d", stats.GateErrors)
	}
	if stats.Steps != 1 {
		t.Errorf("Step should advance despite gate error, steps=%d", stats.Steps)
	}
}

func TestNewSequencerValidation(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := NewSequencer(cfg, nil, NewMockGPIODriver()); !errors.Is(err, ErrNoTimer) {
		t.Errorf("Expected ErrNoTimer, got %v", err)
	}
	if _, err := NewSequencer(cfg, newFakeTimer(), nil); !errors.Is(err, ErrNoGPIO) {
		t.Errorf("Expected ErrNoGPIO, got %v", err)
	}
	cfg.ReferenceTrack = NumTracks
	if _, err := NewSequencer(cfg, newFakeTimer(), NewMockGPIODriver()); !errors.Is(err, ErrBadReference) {
		t.Errorf("Expected ErrBadReference, got %v", err)
	}
}
