package sim

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gateseq/core"
)

func TestTimerDeliversMatch(t *testing.T) {
	timer := NewTimer16()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired int32
	go timer.Run(ctx, func() { atomic.AddInt32(&fired, 1) })

	timer.SetCompare(timer.Counter() + 2000)
	timer.EnableCompare()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&fired) == 1 },
		time.Second, time.Millisecond)
	assert.Equal(t, uint64(1), timer.Matches())
}

func TestTimerDisabledCompareStaysQuiet(t *testing.T) {
	timer := NewTimer16()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired int32
	go timer.Run(ctx, func() { atomic.AddInt32(&fired, 1) })

	timer.SetCompare(timer.Counter() + 1000)
	timer.EnableCompare()
	timer.DisableCompare()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestPinsRecordEdges(t *testing.T) {
	pins := NewPins()
	require.NoError(t, pins.ConfigureOutput(3))
	assert.ErrorIs(t, pins.ConfigureOutput(3), ErrPinInUse)
	assert.ErrorIs(t, pins.SetPin(4, true), ErrNotConfigured)

	var changes int
	pins.OnChange = func(core.GPIOPin, bool) { changes++ }

	require.NoError(t, pins.SetPin(3, true))
	require.NoError(t, pins.SetPin(3, true))
	require.NoError(t, pins.SetPin(3, false))
	require.NoError(t, pins.SetPin(3, true))

	assert.True(t, pins.Level(3))
	assert.Equal(t, 2, pins.Rises(3))
	assert.Equal(t, 3, changes)
}

func TestSequencerPlaysOnWallClock(t *testing.T) {
	timer := NewTimer16()
	pins := NewPins()
	trig := &Trigger{}

	cfg := core.DefaultConfig()
	cfg.BPM = core.MaxBPM
	cfg.GatePin = 10
	cfg.Trigger = trig

	sq, err := core.NewSequencer(cfg, timer, pins)
	require.NoError(t, err)
	for step := uint8(0); step < core.NumSteps; step += 2 {
		sq.ToggleStep(0, step)
	}
	sq.Poll()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go timer.Run(ctx, sq.Clock().HandleInterrupt)

	sq.Play()
	assert.Eventually(t, func() bool { return sq.Clock().CurrentStep() >= 4 },
		2*time.Second, time.Millisecond)
	sq.Pause()

	assert.False(t, pins.Level(10))
	assert.GreaterOrEqual(t, pins.Rises(10), 2)
	assert.Equal(t, uint32(pins.Rises(10)), trig.Pulses())
}
