package sim

import (
	"errors"
	"sync"
	"sync/atomic"

	"gateseq/core"
)

var (
	ErrNotConfigured = errors.New("pin not configured")
	ErrPinInUse      = errors.New("pin already in use")
)

// Pins records gate levels in memory
type Pins struct {
	mu     sync.Mutex
	levels map[core.GPIOPin]bool
	rises  map[core.GPIOPin]int

	// OnChange, when set, is called on every level change.
	// It runs in interrupt context and must not block.
	OnChange func(pin core.GPIOPin, level bool)
}

func NewPins() *Pins {
	return &Pins{
		levels: make(map[core.GPIOPin]bool),
		rises:  make(map[core.GPIOPin]int),
	}
}

func (p *Pins) ConfigureOutput(pin core.GPIOPin) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.levels[pin]; ok {
		return ErrPinInUse
	}
	p.levels[pin] = false
	return nil
}

func (p *Pins) SetPin(pin core.GPIOPin, value bool) error {
	p.mu.Lock()
	prev, ok := p.levels[pin]
	if !ok {
		p.mu.Unlock()
		return ErrNotConfigured
	}
	p.levels[pin] = value
	if value && !prev {
		p.rises[pin]++
	}
	onChange := p.OnChange
	p.mu.Unlock()

	if onChange != nil && prev != value {
		onChange(pin, value)
	}
	return nil
}

// Level returns the last level written to pin
func (p *Pins) Level(pin core.GPIOPin) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.levels[pin]
}

// Rises returns the number of low to high transitions on pin
func (p *Pins) Rises(pin core.GPIOPin) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rises[pin]
}

// Trigger counts pulses
type Trigger struct {
	pulses uint32
}

func (t *Trigger) Fire() {
	atomic.AddUint32(&t.pulses, 1)
}

// Pulses returns the number of pulses fired
func (t *Trigger) Pulses() uint32 {
	return atomic.LoadUint32(&t.pulses)
}
