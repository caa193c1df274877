package core

// Step clock scheduler
// Turns a tempo into step-advance events on a 16-bit compare timer, chaining
// bounded segments for long steps and catching up after late service.

import (
	"errors"
	"sync/atomic"
)

// ClockState is the transport state of the step clock
type ClockState uint32

const (
	Stopped ClockState = iota
	Playing
)

// MaxCatchUp bounds the segments one interrupt may retire before it gives up
// on the lost time and resynchronizes to the current counter value.
const MaxCatchUp = 64

var (
	ErrNoTimer      = errors.New("step clock: compare timer is nil")
	ErrNoGPIO       = errors.New("step clock: gpio driver is nil")
	ErrBadReference = errors.New("step clock: reference track out of range")
)

// Stats are diagnostic counters maintained by the interrupt path
type Stats struct {
	Steps          uint32 // Steps advanced
	Segments       uint32 // Compare segments retired
	MissedSegments uint32 // Segments retired late, in catch-up
	MaxOverrunUS   uint32 // Largest observed service latency past a compare point
	Resyncs        uint32 // Times the catch-up bound was hit
	GateErrors     uint32 // Gate writes the driver rejected
}

// StepClock owns the compare timer and the gate outputs.
//
// Fields above the shared block are touched only by OnCompare or with
// interrupts masked. The main loop reads the shared block through atomics.
type StepClock struct {
	timer   CompareTimer
	gpio    GPIODriver
	cache   *CachePair
	trigger Trigger

	refTrack  uint8
	gatePin   GPIOPin
	trackPins [NumTracks]GPIOPin
	multiGate bool

	interval  StepInterval
	ppqn      uint16
	stepLen   uint32 // Length of the current step, us
	remaining uint32 // Time left in the current step, pending segment included
	segment   uint32 // Length of the pending segment
	base      uint16 // Counter value the pending segment is measured from
	nextStep  uint8
	trackPos  [NumTracks]uint8

	ring TimingRing

	// Shared with the main loop
	state       uint32
	bpm         uint32
	current     uint32
	stepChanged uint32
	loops       uint32

	steps      uint32
	segments   uint32
	missed     uint32
	maxOverrun uint32
	resyncs    uint32
	gateErrors uint32
}

// NewStepClock configures the gate outputs low and returns a stopped clock
func NewStepClock(cfg Config, timer CompareTimer, gpio GPIODriver, cache *CachePair) (*StepClock, error) {
	if timer == nil {
		return nil, ErrNoTimer
	}
	if gpio == nil {
		return nil, ErrNoGPIO
	}
	if cfg.ReferenceTrack >= NumTracks {
		return nil, ErrBadReference
	}

	c := &StepClock{
		timer:     timer,
		gpio:      gpio,
		cache:     cache,
		trigger:   cfg.Trigger,
		refTrack:  cfg.ReferenceTrack,
		gatePin:   cfg.GatePin,
		trackPins: cfg.TrackGatePins,
		ppqn:      cfg.PPQN,
	}
	if c.ppqn == 0 {
		c.ppqn = DefaultPPQN
	}
	bpm := ClampBPM(cfg.BPM)
	c.interval.Configure(bpm, c.ppqn)
	c.bpm = uint32(bpm)
	c.ring.SetEnabled(true)

	if c.gatePin != NoPin {
		if err := gpio.ConfigureOutput(c.gatePin); err != nil {
			return nil, err
		}
	}
	for _, pin := range c.trackPins {
		if pin == NoPin {
			continue
		}
		c.multiGate = true
		if err := gpio.ConfigureOutput(pin); err != nil {
			return nil, err
		}
	}
	timer.DisableCompare()
	c.allGatesLow()

	return c, nil
}

// Start arms the clock. The pending step sounds immediately and the next
// one follows a full interval later. No-op while playing.
func (c *StepClock) Start() {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	if ClockState(atomic.LoadUint32(&c.state)) == Playing {
		return
	}

	c.timer.DisableCompare()
	c.interval.Reset()
	c.base = c.timer.Counter()
	c.advance()
	c.stepLen = c.interval.Next()
	c.remaining = c.stepLen
	c.segment = minU32(c.remaining, MaxSegmentUS)
	c.timer.SetCompare(c.base + uint16(c.segment))

	atomic.StoreUint32(&c.state, uint32(Playing))
	c.timer.EnableCompare()
	c.ring.Record(EvtStart, c.nextStep, c.base, c.stepLen, 0)
}

// Pause disarms the compare event and forces every gate low.
// The position is kept, Start resumes from the following step.
func (c *StepClock) Pause() {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	c.halt()
}

// Stop pauses and rewinds to step 0
func (c *StepClock) Stop() {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	c.halt()
	c.nextStep = 0
	for i := range c.trackPos {
		c.trackPos[i] = 0
	}
	atomic.StoreUint32(&c.current, 0)
	atomic.StoreUint32(&c.stepChanged, 1)
}

// halt runs with interrupts masked, so the handler can neither observe a
// half-disarmed clock nor raise a gate after it was forced low.
func (c *StepClock) halt() {
	c.timer.DisableCompare()
	atomic.StoreUint32(&c.state, uint32(Stopped))
	c.allGatesLow()
	c.ring.Record(EvtStop, c.nextStep, c.timer.Counter(), 0, 0)
}

// SetBPM changes the tempo. While playing, the pending compare is
// reprogrammed in place so playback never stops.
func (c *StepClock) SetBPM(bpm uint16) uint16 {
	bpm = ClampBPM(bpm)

	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	atomic.StoreUint32(&c.bpm, uint32(bpm))
	c.interval.Configure(bpm, c.ppqn)
	c.retime()
	c.ring.Record(EvtTempo, c.nextStep, c.timer.Counter(), uint32(bpm), c.interval.Base)
	return bpm
}

// SetPPQN changes the clock resolution, keeping the tempo
func (c *StepClock) SetPPQN(ppqn uint16) {
	if ppqn == 0 {
		ppqn = DefaultPPQN
	}

	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	c.ppqn = ppqn
	c.interval.Configure(uint16(atomic.LoadUint32(&c.bpm)), ppqn)
	c.retime()
}

// retime fits the current step to a freshly configured interval, keeping the
// time already spent in it. Interrupts must be masked.
func (c *StepClock) retime() {
	if ClockState(atomic.LoadUint32(&c.state)) != Playing {
		return
	}

	now := c.timer.Counter()
	inSegment := uint32(now - c.base)
	if inSegment > c.segment {
		inSegment = c.segment // Match already pending
	}
	done := c.stepLen - c.remaining + inSegment

	c.stepLen = c.interval.Next()
	if done+MinLeadUS >= c.stepLen {
		c.remaining = MinLeadUS
	} else {
		c.remaining = c.stepLen - done
	}
	c.base = now
	c.segment = minU32(c.remaining, MaxSegmentUS)
	if c.arm() {
		c.OnCompare()
	}
}

// OnCompare is the compare-match interrupt handler.
//
// It retires the due segment, advancing the step when the step's time is
// used up, and keeps retiring segments for as long as the elapsed counter
// delta covers them, so late service costs smoothness, never tempo.
func (c *StepClock) OnCompare() {
	if ClockState(atomic.LoadUint32(&c.state)) != Playing {
		// Armed from before a pause
		c.timer.DisableCompare()
		return
	}

	now := c.timer.Counter()
	elapsed := uint32(now - c.base)
	if elapsed < c.segment {
		// Early or spurious match
		if !c.arm() {
			return
		}
		// Target passed while re-arming; the match is due now
		now = c.timer.Counter()
		elapsed = uint32(now - c.base)
	}

	overrun := elapsed - c.segment
	if overrun > atomic.LoadUint32(&c.maxOverrun) {
		atomic.StoreUint32(&c.maxOverrun, overrun)
	}

	var retired uint32
	for {
		seg := c.segment
		c.retire()
		elapsed -= seg
		retired++

		if elapsed < c.segment {
			if !c.arm() {
				break
			}
			// Target slipped behind the counter while programming it
			now = c.timer.Counter()
			elapsed = uint32(now - c.base)
		}

		if retired >= MaxCatchUp {
			c.base = now
			c.arm()
			atomic.AddUint32(&c.resyncs, 1)
			c.ring.Record(EvtResync, c.nextStep, now, retired, c.remaining)
			break
		}
	}

	atomic.AddUint32(&c.segments, retired)
	if retired > 1 {
		atomic.AddUint32(&c.missed, retired-1)
		c.ring.Record(EvtCatchUp, c.nextStep, now, overrun, retired)
	}
}

// HandleInterrupt runs OnCompare under the interrupt mask, for callers that
// deliver compare matches outside a real interrupt context
func (c *StepClock) HandleInterrupt() {
	state := DisableInterrupts()
	c.OnCompare()
	RestoreInterrupts(state)
}

// retire consumes the pending segment and picks the next one
func (c *StepClock) retire() {
	c.base += uint16(c.segment)
	c.remaining -= c.segment
	if c.remaining == 0 {
		c.advance()
		c.stepLen = c.interval.Next()
		c.remaining = c.stepLen
	} else {
		c.ring.Record(EvtSegment, c.nextStep, c.base, c.remaining, 0)
	}
	c.segment = minU32(c.remaining, MaxSegmentUS)
}

// arm programs the pending segment's compare value and reports whether the
// counter had already reached it by the time it was written.
func (c *StepClock) arm() bool {
	c.timer.SetCompare(c.base + uint16(c.segment))
	return uint32(c.timer.Counter()-c.base) >= c.segment
}

// advance performs the once-per-step action: gate outputs from the active
// runtime cache, position update, and publication to the main loop.
func (c *StepClock) advance() {
	buf, idx := c.cache.Acquire()
	defer c.cache.Release(idx)

	ref := &buf.Tracks[c.refTrack]
	length := ref.Length
	if length == 0 {
		c.setGate(c.gatePin, false)
		return
	}

	step := c.nextStep
	if step >= length {
		step = 0 // Track shortened under the playhead
	}
	gate := ref.GateMask&(1<<step) != 0
	c.setGate(c.gatePin, gate)
	if gate && c.trigger != nil {
		c.trigger.Fire()
	}

	if c.multiGate {
		c.advanceTracks(buf)
	}

	c.nextStep = (step + 1) % length
	atomic.StoreUint32(&c.current, uint32(step))
	atomic.StoreUint32(&c.stepChanged, 1)
	if c.nextStep == 0 {
		atomic.AddUint32(&c.loops, 1)
	}
	atomic.AddUint32(&c.steps, 1)
	c.ring.Record(EvtStep, step, c.base, c.stepLen, uint32(ref.GateMask))
}

// advanceTracks drives the per-track gates, each at its own position modulo
// its own cached length
func (c *StepClock) advanceTracks(buf *RuntimeCache) {
	for t := range c.trackPins {
		pin := c.trackPins[t]
		if pin == NoPin {
			continue
		}
		tr := &buf.Tracks[t]
		if tr.Length == 0 {
			c.setGate(pin, false)
			continue
		}
		pos := c.trackPos[t]
		if pos >= tr.Length {
			pos = 0
		}
		c.setGate(pin, tr.GateMask&(1<<pos) != 0)
		c.trackPos[t] = (pos + 1) % tr.Length
	}
}

func (c *StepClock) setGate(pin GPIOPin, high bool) {
	if pin == NoPin {
		return
	}
	if err := c.gpio.SetPin(pin, high); err != nil {
		atomic.AddUint32(&c.gateErrors, 1)
	}
}

func (c *StepClock) allGatesLow() {
	c.setGate(c.gatePin, false)
	for _, pin := range c.trackPins {
		c.setGate(pin, false)
	}
}

// State returns the transport state
func (c *StepClock) State() ClockState {
	return ClockState(atomic.LoadUint32(&c.state))
}

// Playing reports whether the clock is armed
func (c *StepClock) Playing() bool {
	return c.State() == Playing
}

// BPM returns the current tempo
func (c *StepClock) BPM() uint16 {
	return uint16(atomic.LoadUint32(&c.bpm))
}

// PPQN returns the configured clock resolution.
// Written with interrupts masked from the main loop only.
func (c *StepClock) PPQN() uint16 {
	return c.ppqn
}

// CurrentStep returns the step that sounded last
func (c *StepClock) CurrentStep() uint8 {
	return uint8(atomic.LoadUint32(&c.current))
}

// TakeStepChanged returns and clears the step-changed signal.
// A true result guarantees CurrentStep is at least as new as the signal.
func (c *StepClock) TakeStepChanged() bool {
	return atomic.SwapUint32(&c.stepChanged, 0) != 0
}

// Loops returns how many times the reference track wrapped to step 0
func (c *StepClock) Loops() uint32 {
	return atomic.LoadUint32(&c.loops)
}

// Stats returns a snapshot of the diagnostic counters
func (c *StepClock) Stats() Stats {
	return Stats{
		Steps:          atomic.LoadUint32(&c.steps),
		Segments:       atomic.LoadUint32(&c.segments),
		MissedSegments: atomic.LoadUint32(&c.missed),
		MaxOverrunUS:   atomic.LoadUint32(&c.maxOverrun),
		Resyncs:        atomic.LoadUint32(&c.resyncs),
		GateErrors:     atomic.LoadUint32(&c.gateErrors),
	}
}

// Ring returns the timing event ring. Read it with interrupts masked or
// while stopped.
func (c *StepClock) Ring() *TimingRing {
	return &c.ring
}

// DumpTiming writes the ring and counters through the debug writer
func (c *StepClock) DumpTiming() {
	state := DisableInterrupts()
	var ring TimingRing = c.ring
	RestoreInterrupts(state)

	DumpTimingRing(&ring, c.Stats())
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
