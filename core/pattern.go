package core

// Pattern store: the musical data model edited by the UI and projected into
// the runtime cache for the step clock.

const (
	NumSteps     = 16
	NumTracks    = 8
	NumPatterns  = 16
	SongCapacity = 64

	MaxPitch     = 127
	DefaultPitch = 60 // Middle C

	// NoStep marks an empty step selection
	NoStep int8 = -1

	// AllTracks is the selection mask with every track set
	AllTracks uint8 = 1<<NumTracks - 1
)

// PlayMode selects how the playing pattern is resolved
type PlayMode uint8

const (
	PlayPattern PlayMode = iota // Play PlayingPattern directly
	PlaySong                    // Play Song.Patterns[SongPosition]
)

// Step is a single sixteenth-note slot
type Step struct {
	Active bool
	Pitch  uint8 // 0..127, 0 means unset
}

// Track is one gate channel's sequence within a pattern
type Track struct {
	Steps  [NumSteps]Step
	Length uint8 // 1..NumSteps, steps at or beyond Length never play
}

// Pattern is one loop of all tracks
type Pattern struct {
	Tracks [NumTracks]Track
}

// SetLength applies n to every track of the pattern.
// Per-track lengths are carried by Track but edited uniformly for now.
func (p *Pattern) SetLength(n uint8) {
	n = clampLength(n)
	for i := range p.Tracks {
		p.Tracks[i].Length = n
	}
}

// Song is an ordered arrangement of pattern indices
type Song struct {
	Patterns [SongCapacity]uint8
	Len      uint8
}

// At returns the pattern index at song position pos, wrapping past the end.
// An empty song resolves to pattern 0.
func (s *Song) At(pos uint8) uint8 {
	if s.Len == 0 {
		return 0
	}
	return s.Patterns[pos%s.Len]
}

// State is the aggregate sequencer content and selection.
// Only the editing API on Sequencer mutates it.
type State struct {
	Patterns [NumPatterns]Pattern
	Song     Song

	PlayMode     PlayMode
	SongPosition uint8

	VisiblePattern     uint8 // What the UI edits
	PrevVisiblePattern uint8
	PlayingPattern     uint8 // What sounds in PlayPattern mode

	SelectedTracks     uint8 // Bitmask, never zero
	PrevSelectedTracks uint8

	SelectedStep     int8 // NoStep when nothing is selected
	PrevSelectedStep int8
}

// NewState returns an empty state with full-length patterns and track 0 selected
func NewState() *State {
	s := &State{
		SelectedTracks:     1,
		PrevSelectedTracks: 1,
		SelectedStep:       NoStep,
		PrevSelectedStep:   NoStep,
	}
	for i := range s.Patterns {
		s.Patterns[i].SetLength(NumSteps)
	}
	return s
}

// ResolvePlayingPattern returns the pattern that currently sounds
func (s *State) ResolvePlayingPattern() uint8 {
	if s.PlayMode == PlaySong {
		return s.Song.At(s.SongPosition) % NumPatterns
	}
	return s.PlayingPattern
}

// StateView is the read-only surface of the pattern store handed to
// rendering and input collaborators.
type StateView interface {
	Step(pattern, track, step uint8) Step
	TrackLength(pattern, track uint8) uint8
	VisiblePattern() (cur, prev uint8)
	PlayingPattern() uint8
	Mode() PlayMode
	SongPosition() uint8
	SongLen() uint8
	SongEntry(pos uint8) uint8
	SelectedTracks() (cur, prev uint8)
	SelectedStep() (uint8, bool)
	PrevSelectedStep() (uint8, bool)
}

// stateView adapts *State to StateView without exposing mutation
type stateView struct {
	s *State
}

func (v stateView) Step(pattern, track, step uint8) Step {
	if pattern >= NumPatterns || track >= NumTracks || step >= NumSteps {
		return Step{}
	}
	return v.s.Patterns[pattern].Tracks[track].Steps[step]
}

func (v stateView) TrackLength(pattern, track uint8) uint8 {
	if pattern >= NumPatterns || track >= NumTracks {
		return 0
	}
	return v.s.Patterns[pattern].Tracks[track].Length
}

func (v stateView) VisiblePattern() (cur, prev uint8) {
	return v.s.VisiblePattern, v.s.PrevVisiblePattern
}

func (v stateView) PlayingPattern() uint8 {
	return v.s.ResolvePlayingPattern()
}

func (v stateView) Mode() PlayMode {
	return v.s.PlayMode
}

func (v stateView) SongPosition() uint8 {
	return v.s.SongPosition
}

func (v stateView) SongLen() uint8 {
	return v.s.Song.Len
}

func (v stateView) SongEntry(pos uint8) uint8 {
	if pos >= v.s.Song.Len {
		return 0
	}
	return v.s.Song.Patterns[pos]
}

func (v stateView) SelectedTracks() (cur, prev uint8) {
	return v.s.SelectedTracks, v.s.PrevSelectedTracks
}

func (v stateView) SelectedStep() (uint8, bool) {
	return optionalStep(v.s.SelectedStep)
}

func (v stateView) PrevSelectedStep() (uint8, bool) {
	return optionalStep(v.s.PrevSelectedStep)
}

func optionalStep(s int8) (uint8, bool) {
	if s < 0 {
		return 0, false
	}
	return uint8(s), true
}

func clampLength(n uint8) uint8 {
	if n < 1 {
		return 1
	}
	if n > NumSteps {
		return NumSteps
	}
	return n
}

// normalizePitch clamps to the MIDI range and replaces 0 with DefaultPitch
func normalizePitch(p uint8) uint8 {
	if p == 0 {
		return DefaultPitch
	}
	if p > MaxPitch {
		return MaxPitch
	}
	return p
}

// ForEachTrack calls fn for every track index set in mask, lowest first
func ForEachTrack(mask uint8, fn func(track uint8)) {
	for i := uint8(0); i < NumTracks; i++ {
		if mask&(1<<i) != 0 {
			fn(i)
		}
	}
}
