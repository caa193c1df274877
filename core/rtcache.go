package core

import "sync/atomic"

// TrackCache is the timing-path projection of one track
type TrackCache struct {
	GateMask   uint16 // Bit i set iff step i is active
	Pitches    [NumSteps]uint8
	Length     uint8
	GateLength uint8 // Reserved for gate duration control
}

// RuntimeCache is the timing-path projection of the playing pattern
type RuntimeCache struct {
	Tracks  [NumTracks]TrackCache
	Pattern uint8 // Source pattern index, for diagnostics
}

// CachePair is the double-buffered runtime cache.
//
// The step clock reads the active buffer; Rebuild fills the other one and
// flips the active index. Rebuild must only be called from the main loop.
type CachePair struct {
	bufs    [2]RuntimeCache
	active  uint32    // Index of the buffer readers may use
	readers [2]uint32 // Readers currently holding each buffer
	builds  uint32
}

// Acquire pins the active buffer for reading and returns it with its index.
// Callers must Release the index when done. Never blocks.
func (p *CachePair) Acquire() (*RuntimeCache, uint32) {
	for {
		idx := atomic.LoadUint32(&p.active)
		atomic.AddUint32(&p.readers[idx], 1)
		if atomic.LoadUint32(&p.active) == idx {
			return &p.bufs[idx], idx
		}
		// Flipped between load and pin; the writer may already own idx
		atomic.AddUint32(&p.readers[idx], ^uint32(0))
	}
}

// Release unpins a buffer obtained from Acquire
func (p *CachePair) Release(idx uint32) {
	atomic.AddUint32(&p.readers[idx], ^uint32(0))
}

// ActiveIndex returns the index of the buffer readers currently see
func (p *CachePair) ActiveIndex() uint32 {
	return atomic.LoadUint32(&p.active)
}

// Builds returns how many rebuilds have been published
func (p *CachePair) Builds() uint32 {
	return atomic.LoadUint32(&p.builds)
}

// Rebuild projects the playing pattern of s into the inactive buffer and
// publishes it. Readers observe either the previous or the new snapshot.
func (p *CachePair) Rebuild(s *State) {
	next := atomic.LoadUint32(&p.active) ^ 1

	// A reader that pinned next before the last flip may still be inside it.
	// On a single core this never spins: the interrupt finishes before we resume.
	for atomic.LoadUint32(&p.readers[next]) != 0 {
		spinWait()
	}

	fillCache(&p.bufs[next], s)
	atomic.StoreUint32(&p.active, next)
	atomic.AddUint32(&p.builds, 1)
}

func fillCache(c *RuntimeCache, s *State) {
	pat := s.ResolvePlayingPattern()
	c.Pattern = pat
	src := &s.Patterns[pat]
	for t := range src.Tracks {
		tr := &src.Tracks[t]
		dst := &c.Tracks[t]

		var mask uint16
		for i := range tr.Steps {
			if tr.Steps[i].Active {
				mask |= 1 << uint(i)
			}
			dst.Pitches[i] = tr.Steps[i].Pitch
		}
		dst.GateMask = mask
		dst.Length = tr.Length
		dst.GateLength = 0
	}
}
