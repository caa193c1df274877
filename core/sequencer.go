package core

// Config holds construction-time step clock settings
type Config struct {
	BPM  uint16 // Clamped to [MinBPM, MaxBPM]
	PPQN uint16 // 0 means DefaultPPQN

	// ReferenceTrack drives GatePin and the step position
	ReferenceTrack uint8
	GatePin        GPIOPin

	// TrackGatePins drive one gate per track when set; NoPin disables a channel
	TrackGatePins [NumTracks]GPIOPin

	// Trigger fires on every reference gate-on; nil disables it
	Trigger Trigger
}

// DefaultConfig returns 120 BPM at 24 PPQN with no outputs assigned
func DefaultConfig() Config {
	cfg := Config{
		BPM:     DefaultBPM,
		PPQN:    DefaultPPQN,
		GatePin: NoPin,
	}
	for i := range cfg.TrackGatePins {
		cfg.TrackGatePins[i] = NoPin
	}
	return cfg
}

// Sequencer is the context shared by the interrupt path and the main loop.
//
// The editing API, Poll and the transport methods belong to the main loop.
// The interrupt path only calls Clock().OnCompare.
type Sequencer struct {
	state *State
	dirty DirtyBus
	cache CachePair
	clock *StepClock

	lastLoops     uint32
	renderedStep  uint8
	cycleCounter  func() uint32
	rebuildCycles uint32
}

// NewSequencer builds the context around the given timer and gpio driver
func NewSequencer(cfg Config, timer CompareTimer, gpio GPIODriver) (*Sequencer, error) {
	sq := &Sequencer{
		state: NewState(),
	}
	sq.cache.Rebuild(sq.state)

	clock, err := NewStepClock(cfg, timer, gpio, &sq.cache)
	if err != nil {
		return nil, err
	}
	sq.clock = clock
	sq.dirty.Mark(DirtyAll &^ DirtyRTCache)

	return sq, nil
}

// View returns the read-only pattern store surface
func (sq *Sequencer) View() StateView {
	return stateView{s: sq.state}
}

// Clock returns the step clock, whose OnCompare is the interrupt handler
func (sq *Sequencer) Clock() *StepClock {
	return sq.clock
}

// Dirty returns the dirty-flag bus
func (sq *Sequencer) Dirty() *DirtyBus {
	return &sq.dirty
}

// Cache returns the runtime cache pair
func (sq *Sequencer) Cache() *CachePair {
	return &sq.cache
}

// SetCycleCounter installs a free-running cycle counter used to time cache
// rebuilds. nil disables the measurement.
func (sq *Sequencer) SetCycleCounter(counter func() uint32) {
	sq.cycleCounter = counter
}

// LastRebuildCycles returns the cost of the last cache rebuild, 0 when no
// cycle counter is installed
func (sq *Sequencer) LastRebuildCycles() uint32 {
	return sq.rebuildCycles
}

func (sq *Sequencer) rebuild() {
	if sq.cycleCounter == nil {
		sq.cache.Rebuild(sq.state)
		return
	}
	sq.rebuildCycles = MeasureCycles(sq.cycleCounter, func() {
		sq.cache.Rebuild(sq.state)
	})
}

// BPM returns the current tempo
func (sq *Sequencer) BPM() uint16 {
	return sq.clock.BPM()
}
