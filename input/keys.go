// Package input turns key presses and edit link commands into sequencer edits
package input

// Kind is the kind of a Button
type Kind uint8

const (
	KindNone Kind = iota
	KindStep
	KindTrack
	KindPattern
	KindNote
	KindOctaveUp
	KindOctaveDown
	KindPlay
	KindStop
	KindTempoUp
	KindTempoDown
	KindPatternPrev
	KindPatternNext
)

// Button is one front panel control. Value carries the step, track,
// pattern or note number for the kinds that need one.
type Button struct {
	Kind  Kind
	Value uint8
}

func Step(n uint8) Button    { return Button{Kind: KindStep, Value: n} }
func Track(n uint8) Button   { return Button{Kind: KindTrack, Value: n} }
func Pattern(n uint8) Button { return Button{Kind: KindPattern, Value: n} }
func Note(n uint8) Button    { return Button{Kind: KindNote, Value: n} }

var (
	OctaveUp    = Button{Kind: KindOctaveUp}
	OctaveDown  = Button{Kind: KindOctaveDown}
	Play        = Button{Kind: KindPlay}
	Stop        = Button{Kind: KindStop}
	TempoUp     = Button{Kind: KindTempoUp}
	TempoDown   = Button{Kind: KindTempoDown}
	PatternPrev = Button{Kind: KindPatternPrev}
	PatternNext = Button{Kind: KindPatternNext}
)

// Keyboard rows: top two for steps, shifted digits for tracks, bottom row
// as a one-octave piano starting at middle C
const (
	stepKeys  = "1234567890qwerty"
	trackKeys = "!@#$%^&*"
	noteKeys  = "zsxdcvgbhnjm"

	BaseNote = 60
)

// KeyToButton maps a raw key byte to a button
func KeyToButton(key byte) (Button, bool) {
	for i := 0; i < len(stepKeys); i++ {
		if stepKeys[i] == key {
			return Step(uint8(i)), true
		}
	}
	for i := 0; i < len(trackKeys); i++ {
		if trackKeys[i] == key {
			return Track(uint8(i)), true
		}
	}
	for i := 0; i < len(noteKeys); i++ {
		if noteKeys[i] == key {
			return Note(uint8(BaseNote + i)), true
		}
	}

	switch key {
	case '+', '=':
		return OctaveUp, true
	case '-':
		return OctaveDown, true
	case ' ':
		return Play, true
	case '.':
		return Stop, true
	case ']':
		return TempoUp, true
	case '[':
		return TempoDown, true
	case 'o':
		return PatternPrev, true
	case 'p':
		return PatternNext, true
	}
	return Button{}, false
}

func (k Kind) String() string {
	switch k {
	case KindStep:
		return "step"
	case KindTrack:
		return "track"
	case KindPattern:
		return "pattern"
	case KindNote:
		return "note"
	case KindOctaveUp:
		return "octave_up"
	case KindOctaveDown:
		return "octave_down"
	case KindPlay:
		return "play"
	case KindStop:
		return "stop"
	case KindTempoUp:
		return "tempo_up"
	case KindTempoDown:
		return "tempo_down"
	case KindPatternPrev:
		return "pattern_prev"
	case KindPatternNext:
		return "pattern_next"
	default:
		return "none"
	}
}
