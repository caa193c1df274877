package input

import (
	"errors"
	"strconv"

	"gateseq/core"
	"gateseq/protocol"
)

var ErrUnmappedKey = errors.New("input: key has no button")

// Editor is the part of the sequencer the handler drives. *core.Sequencer
// implements it.
type Editor interface {
	ToggleSteps(mask uint8, step uint8)
	SetStepPitch(mask uint8, step uint8, pitch uint8)
	SelectStep(step uint8)
	SelectOnlyTrack(track uint8)
	ToggleTrack(track uint8)
	SetVisiblePattern(n uint8)
	SetPlayingPattern(n uint8)
	SetPatternLength(p, n uint8)
	SetBPM(bpm uint16) uint16
	BPM() uint16
	SetPlayMode(m core.PlayMode)
	SongAppend(p uint8) bool
	SongClear()
	TogglePlay()
	Stop()
	View() core.StateView
}

const (
	MaxOctaveShift = 5
	TempoStep      = 1
)

// Handler applies buttons to an Editor. Main loop only.
type Handler struct {
	ed Editor

	// Octave is the shift applied to note buttons, in octaves
	Octave int8

	// Modifier makes track buttons add to or remove from the selection
	// instead of replacing it
	Modifier bool
}

func NewHandler(ed Editor) *Handler {
	return &Handler{ed: ed}
}

// HandleKey maps and applies one raw key byte
func (h *Handler) HandleKey(key byte) error {
	b, ok := KeyToButton(key)
	if !ok {
		return ErrUnmappedKey
	}
	h.Handle(b)
	return nil
}

// Handle applies one button press
func (h *Handler) Handle(b Button) {
	view := h.ed.View()

	switch b.Kind {
	case KindStep:
		if b.Value >= core.NumSteps {
			return
		}
		tracks, _ := view.SelectedTracks()
		h.ed.ToggleSteps(tracks, b.Value)
		h.ed.SelectStep(b.Value)
		core.DebugPrintln("[INPUT] toggle step " + strconv.Itoa(int(b.Value)))

	case KindTrack:
		if h.Modifier {
			h.ed.ToggleTrack(b.Value)
		} else {
			h.ed.SelectOnlyTrack(b.Value)
		}

	case KindPattern:
		h.ed.SetVisiblePattern(b.Value)

	case KindPatternPrev, KindPatternNext:
		cur, _ := view.VisiblePattern()
		if b.Kind == KindPatternNext {
			cur = (cur + 1) % core.NumPatterns
		} else {
			cur = (cur + core.NumPatterns - 1) % core.NumPatterns
		}
		h.ed.SetVisiblePattern(cur)

	case KindNote:
		step, ok := view.SelectedStep()
		if !ok {
			return
		}
		tracks, _ := view.SelectedTracks()
		h.ed.SetStepPitch(tracks, step, h.shiftNote(b.Value))

	case KindOctaveUp:
		if h.Octave < MaxOctaveShift {
			h.Octave++
		}

	case KindOctaveDown:
		if h.Octave > -MaxOctaveShift {
			h.Octave--
		}

	case KindPlay:
		h.ed.TogglePlay()

	case KindStop:
		h.ed.Stop()

	case KindTempoUp:
		h.ed.SetBPM(h.ed.BPM() + TempoStep)

	case KindTempoDown:
		h.ed.SetBPM(h.ed.BPM() - TempoStep)
	}
}

// shiftNote applies the octave shift, clamped to the MIDI range
func (h *Handler) shiftNote(n uint8) uint8 {
	v := int(n) + 12*int(h.Octave)
	if v < 1 {
		v = 1
	}
	if v > core.MaxPitch {
		v = core.MaxPitch
	}
	return uint8(v)
}

// Apply executes one edit link command
func (h *Handler) Apply(cmd protocol.Command) error {
	switch cmd.ID {
	case protocol.CmdKey:
		return h.HandleKey(byte(cmd.Args[0]))
	case protocol.CmdSetBPM:
		h.ed.SetBPM(clampU16(cmd.Args[0]))
	case protocol.CmdSetLength:
		h.ed.SetPatternLength(clampU8(cmd.Args[0]), clampU8(cmd.Args[1]))
	case protocol.CmdSetPlayMode:
		h.ed.SetPlayMode(core.PlayMode(clampU8(cmd.Args[0])))
	case protocol.CmdSongAppend:
		h.ed.SongAppend(clampU8(cmd.Args[0]))
	case protocol.CmdSongClear:
		h.ed.SongClear()
	case protocol.CmdSelectPattern:
		p := clampU8(cmd.Args[0])
		h.ed.SetVisiblePattern(p)
		h.ed.SetPlayingPattern(p)
	default:
		return protocol.ErrUnknownCommand
	}
	return nil
}

func clampU8(v uint32) uint8 {
	if v > 0xFF {
		return 0xFF
	}
	return uint8(v)
}

func clampU16(v uint32) uint16 {
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}
