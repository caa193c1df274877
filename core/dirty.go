package core

import "sync/atomic"

// Dirty is a set of state categories changed since the consumer last drained
type Dirty uint32

const (
	DirtyStepSelection  Dirty = 1 << 0 // Selected step moved
	DirtyTrackSelection Dirty = 1 << 1 // Selected track mask changed
	DirtyNoteData       Dirty = 1 << 2 // Step content of the visible pattern changed
	DirtyBPM            Dirty = 1 << 3 // Tempo changed
	DirtyPattern        Dirty = 1 << 4 // Visible/playing pattern, length or song changed
	DirtyRTCache        Dirty = 1 << 5 // Runtime cache must be rebuilt
	DirtyTransport      Dirty = 1 << 6 // Play/pause/stop changed

	DirtyAll = DirtyStepSelection | DirtyTrackSelection | DirtyNoteData |
		DirtyBPM | DirtyPattern | DirtyRTCache | DirtyTransport
)

// Has reports whether any bit of m is set in d
func (d Dirty) Has(m Dirty) bool {
	return d&m != 0
}

// DirtyBus merges dirty bits from any number of mutators and hands them to a
// single consumer. Bits are only ever OR-ed in; Drain swaps the mask to zero,
// so every set bit is returned by exactly one drain.
type DirtyBus struct {
	bits uint32
}

// Mark ORs m into the pending mask.
// Implemented as a CAS loop so it needs nothing beyond load and CAS from the target.
func (b *DirtyBus) Mark(m Dirty) {
	if m == 0 {
		return
	}
	for {
		old := atomic.LoadUint32(&b.bits)
		if old&uint32(m) == uint32(m) {
			return
		}
		if atomic.CompareAndSwapUint32(&b.bits, old, old|uint32(m)) {
			return
		}
	}
}

// Drain returns every bit set since the previous drain and clears them
func (b *DirtyBus) Drain() Dirty {
	return Dirty(atomic.SwapUint32(&b.bits, 0))
}

// Pending returns the mask without clearing it
func (b *DirtyBus) Pending() Dirty {
	return Dirty(atomic.LoadUint32(&b.bits))
}
