//go:build rp2040

// Package pio drives the trigger output from a PIO state machine, so the
// pulse width does not depend on interrupt latency.
package pio

import (
	"machine"
	"sync/atomic"
	"time"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"
)

// DefaultPulseWidth suits most modular trigger inputs
const DefaultPulseWidth = 5 * time.Millisecond

// Trigger implements core.Trigger with a PIO pulse generator.
// One Fire queues one pulse of the configured width.
type Trigger struct {
	sm      rp2pio.StateMachine
	pulsar  *piolib.Pulsar
	dropped uint32
}

// NewTrigger claims a state machine on PIO0 and drives pin with it
func NewTrigger(pin machine.Pin, width time.Duration) (*Trigger, error) {
	sm, err := rp2pio.PIO0.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	pulsar, err := piolib.NewPulsar(sm, pin)
	if err != nil {
		return nil, err
	}
	// One period is a high half and a low half
	if err := pulsar.SetPeriod(2 * width); err != nil {
		return nil, err
	}
	return &Trigger{sm: sm, pulsar: pulsar}, nil
}

// Fire queues a pulse without blocking; a full FIFO drops it
func (t *Trigger) Fire() {
	if t.sm.IsTxFIFOFull() {
		atomic.AddUint32(&t.dropped, 1)
		return
	}
	t.pulsar.Start(1)
}

// Dropped returns the number of pulses lost to a full FIFO
func (t *Trigger) Dropped() uint32 {
	return atomic.LoadUint32(&t.dropped)
}
