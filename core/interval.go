package core

// Tempo model: a step is a sixteenth note, so one step spans PPQN/4 clock
// pulses. The exact step time 60e6*pps/(bpm*ppqn) is rarely a whole number of
// microseconds; StepInterval carries the remainder and spreads it over steps.

const (
	MinBPM     = 20
	MaxBPM     = 300
	DefaultBPM = 120

	DefaultPPQN = 24

	usPerMinute = 60000000
)

// PulsesPerStep returns clock pulses per sixteenth-note step.
// PPQN 24 and 4 have exact support; anything else degrades to 1.
func PulsesPerStep(ppqn uint16) uint32 {
	switch ppqn {
	case 24:
		return 6
	case 4:
		return 1
	default:
		return 1
	}
}

// ClampBPM limits bpm to the supported tempo range
func ClampBPM(bpm uint16) uint16 {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// StepInterval is a fixed-point fractional-microsecond step length.
// The exact interval is Base + Rem/Denom microseconds.
type StepInterval struct {
	Base  uint32
	Rem   uint32
	Denom uint32
	Acc   uint32 // Bresenham error accumulator, always < Denom
}

// NewStepInterval computes the interval for bpm and ppqn with a cleared accumulator
func NewStepInterval(bpm, ppqn uint16) StepInterval {
	var iv StepInterval
	iv.Configure(bpm, ppqn)
	return iv
}

// Configure recomputes Base/Rem/Denom and clears the accumulator
func (iv *StepInterval) Configure(bpm, ppqn uint16) {
	bpm = ClampBPM(bpm)
	if ppqn == 0 {
		ppqn = DefaultPPQN
	}
	num := uint32(usPerMinute) * PulsesPerStep(ppqn)
	den := uint32(bpm) * uint32(ppqn)
	iv.Base = num / den
	iv.Rem = num % den
	iv.Denom = den
	iv.Acc = 0
}

// Next returns the length of the next step in microseconds.
// Over N calls the sum differs from N*exact by less than one microsecond.
func (iv *StepInterval) Next() uint32 {
	if iv.Denom == 0 {
		return iv.Base
	}
	iv.Acc += iv.Rem
	if iv.Acc >= iv.Denom {
		iv.Acc -= iv.Denom
		return iv.Base + 1
	}
	return iv.Base
}

// Reset clears the accumulator without changing the tempo
func (iv *StepInterval) Reset() {
	iv.Acc = 0
}
