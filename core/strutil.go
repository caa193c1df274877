package core

// itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa(n int) string {
	if n < 0 {
		return "-" + utoa(uint32(-n))
	}
	return utoa(uint32(n))
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName formats a MIDI pitch as name and octave, 60 is "C4".
// Pitch 0 (unset) formats as "--".
func NoteName(pitch uint8) string {
	if pitch == 0 {
		return "--"
	}
	if pitch > MaxPitch {
		pitch = MaxPitch
	}
	octave := int(pitch)/12 - 1
	return noteNames[pitch%12] + itoa(octave)
}
