package core

// Frame is what one consumer cycle found to do
type Frame struct {
	Dirty       Dirty
	StepChanged bool
	Step        uint8 // Step that sounded last
	PrevStep    uint8 // Step the previous frame reported
	Playing     bool
}

// Idle reports whether the frame carries no work
func (f Frame) Idle() bool {
	return f.Dirty == 0 && !f.StepChanged
}

// Poll runs one consumer cycle: follows the song across loop wraps, takes
// the step-changed signal, drains the dirty bus and rebuilds the runtime
// cache when the timing path's view is stale.
//
// Main loop only. A typical loop renders the returned frame and calls
// WaitForInterrupt when it is idle.
func (sq *Sequencer) Poll() Frame {
	sq.followSong()

	var f Frame
	// Taking the signal before loading the step means a step published after
	// the swap is caught by the next Poll, never lost.
	f.StepChanged = sq.clock.TakeStepChanged()
	f.Step = sq.clock.CurrentStep()
	f.PrevStep = sq.renderedStep
	if f.StepChanged {
		sq.renderedStep = f.Step
	}
	f.Playing = sq.clock.Playing()

	f.Dirty = sq.dirty.Drain()
	if f.Dirty.Has(DirtyRTCache) {
		sq.rebuild()
	}
	return f
}

// followSong moves the song position by the number of reference track wraps
// since the last poll
func (sq *Sequencer) followSong() {
	loops := sq.clock.Loops()
	wraps := loops - sq.lastLoops
	if wraps == 0 {
		return
	}
	sq.lastLoops = loops

	song := &sq.state.Song
	if sq.state.PlayMode != PlaySong || song.Len == 0 {
		return
	}
	pos := (uint32(sq.state.SongPosition) + wraps) % uint32(song.Len)
	sq.state.SongPosition = uint8(pos)
	sq.dirty.Mark(DirtyPattern | DirtyRTCache)
}
