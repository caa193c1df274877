package core

// Editing API. Main loop only: every mutation of State goes through these
// methods, which raise the dirty bits the renderer and the cache rebuild need.
// Out-of-range indices are ignored.

// ToggleStep flips one step of the visible pattern. A step turned on with no
// pitch gets DefaultPitch.
func (sq *Sequencer) ToggleStep(track, step uint8) {
	if track >= NumTracks || step >= NumSteps {
		return
	}
	sq.toggle(track, step)
	sq.dirty.Mark(DirtyNoteData | DirtyRTCache)
}

// ToggleSteps flips step on every track in mask with a single raise
func (sq *Sequencer) ToggleSteps(mask uint8, step uint8) {
	if step >= NumSteps || mask == 0 {
		return
	}
	ForEachTrack(mask, func(track uint8) {
		sq.toggle(track, step)
	})
	sq.dirty.Mark(DirtyNoteData | DirtyRTCache)
}

func (sq *Sequencer) toggle(track, step uint8) {
	st := &sq.state.Patterns[sq.state.VisiblePattern].Tracks[track].Steps[step]
	st.Active = !st.Active
	if st.Active && st.Pitch == 0 {
		st.Pitch = DefaultPitch
	}
}

// SetStepPitch sets the pitch of step on every track in mask and makes it
// sound. Pitch is clamped to MaxPitch, 0 becomes DefaultPitch.
func (sq *Sequencer) SetStepPitch(mask uint8, step uint8, pitch uint8) {
	if step >= NumSteps || mask == 0 {
		return
	}
	pitch = normalizePitch(pitch)
	pat := &sq.state.Patterns[sq.state.VisiblePattern]
	ForEachTrack(mask, func(track uint8) {
		st := &pat.Tracks[track].Steps[step]
		st.Pitch = pitch
		st.Active = true
	})
	sq.dirty.Mark(DirtyNoteData | DirtyRTCache)
}

// SelectStep makes step the edit target
func (sq *Sequencer) SelectStep(step uint8) {
	if step >= NumSteps {
		return
	}
	sq.state.PrevSelectedStep = sq.state.SelectedStep
	sq.state.SelectedStep = int8(step)
	sq.dirty.Mark(DirtyStepSelection)
}

// ClearStepSelection drops the edit target
func (sq *Sequencer) ClearStepSelection() {
	sq.state.PrevSelectedStep = sq.state.SelectedStep
	sq.state.SelectedStep = NoStep
	sq.dirty.Mark(DirtyStepSelection)
}

// SelectOnlyTrack replaces the track selection with a single track
func (sq *Sequencer) SelectOnlyTrack(track uint8) {
	if track >= NumTracks {
		return
	}
	sq.state.PrevSelectedTracks = sq.state.SelectedTracks
	sq.state.SelectedTracks = 1 << track
	sq.dirty.Mark(DirtyTrackSelection)
}

// ToggleTrack adds or removes a track from the selection.
// Removing the last selected track does nothing.
func (sq *Sequencer) ToggleTrack(track uint8) {
	if track >= NumTracks {
		return
	}
	next := sq.state.SelectedTracks ^ (1 << track)
	if next == 0 {
		return
	}
	sq.state.PrevSelectedTracks = sq.state.SelectedTracks
	sq.state.SelectedTracks = next
	sq.dirty.Mark(DirtyTrackSelection)
}

// SetVisiblePattern chooses the pattern the editing API works on
func (sq *Sequencer) SetVisiblePattern(n uint8) {
	if n >= NumPatterns {
		return
	}
	sq.state.PrevVisiblePattern = sq.state.VisiblePattern
	sq.state.VisiblePattern = n
	sq.dirty.Mark(DirtyPattern)
}

// SetPatternLength sets the length of every track of pattern p, clamped to 1..16
func (sq *Sequencer) SetPatternLength(p, n uint8) {
	if p >= NumPatterns {
		return
	}
	sq.state.Patterns[p].SetLength(n)
	sq.dirty.Mark(DirtyPattern | DirtyRTCache)
}

// SetBPM changes the tempo without stopping playback and returns the
// clamped value
func (sq *Sequencer) SetBPM(bpm uint16) uint16 {
	bpm = sq.clock.SetBPM(bpm)
	sq.dirty.Mark(DirtyBPM)
	return bpm
}

// SetPlayingPattern chooses what sounds in PlayPattern mode
func (sq *Sequencer) SetPlayingPattern(n uint8) {
	if n >= NumPatterns {
		return
	}
	sq.state.PlayingPattern = n
	sq.dirty.Mark(DirtyPattern | DirtyRTCache)
}

// SetPlayMode switches between pattern and song playback
func (sq *Sequencer) SetPlayMode(m PlayMode) {
	if m != PlayPattern && m != PlaySong {
		return
	}
	sq.state.PlayMode = m
	sq.dirty.Mark(DirtyPattern | DirtyRTCache)
}

// SongAppend adds pattern p to the end of the song.
// Returns false when the song is full or p is out of range.
func (sq *Sequencer) SongAppend(p uint8) bool {
	song := &sq.state.Song
	if p >= NumPatterns || song.Len >= SongCapacity {
		return false
	}
	song.Patterns[song.Len] = p
	song.Len++
	sq.dirty.Mark(DirtyPattern | DirtyRTCache)
	return true
}

// SongClear empties the song and rewinds to its start
func (sq *Sequencer) SongClear() {
	sq.state.Song.Len = 0
	sq.state.SongPosition = 0
	sq.dirty.Mark(DirtyPattern | DirtyRTCache)
}

// SetSongPosition jumps to position i of the song
func (sq *Sequencer) SetSongPosition(i uint8) {
	if i >= sq.state.Song.Len {
		return
	}
	sq.state.SongPosition = i
	sq.dirty.Mark(DirtyPattern | DirtyRTCache)
}

// Play starts the step clock
func (sq *Sequencer) Play() {
	sq.clock.Start()
	sq.dirty.Mark(DirtyTransport)
}

// Pause stops the step clock and keeps the position
func (sq *Sequencer) Pause() {
	sq.clock.Pause()
	sq.dirty.Mark(DirtyTransport)
}

// Stop stops the step clock and rewinds to step 0 and the song start
func (sq *Sequencer) Stop() {
	sq.clock.Stop()
	sq.lastLoops = sq.clock.Loops() // Wraps before the stop no longer count
	bits := DirtyTransport
	if sq.state.SongPosition != 0 {
		sq.state.SongPosition = 0
		if sq.state.PlayMode == PlaySong {
			bits |= DirtyPattern | DirtyRTCache
		}
	}
	sq.dirty.Mark(bits)
}

// TogglePlay flips between Play and Pause
func (sq *Sequencer) TogglePlay() {
	if sq.clock.Playing() {
		sq.Pause()
		return
	}
	sq.Play()
}
