package core

import "testing"

func TestNoteName(t *testing.T) {
	tests := []struct {
		pitch uint8
		want  string
	}{
		{0, "--"},
		{60, "C4"},
		{61, "C#4"},
		{69, "A4"},
		{12, "C0"},
		{11, "B-1"},
		{127, "G9"},
		{200, "G9"},
	}
	for _, tt := range tests {
		if got := NoteName(tt.pitch); got != tt.want {
			t.Errorf("NoteName(%d) = %q, want %q", tt.pitch, got, tt.want)
		}
	}
}

func TestUtoa(t *testing.T) {
	for n, want := range map[uint32]string{0: "0", 7: "7", 125000: "125000", 4294967295: "4294967295"} {
		if got := utoa(n); got != want {
			t.Errorf("utoa(%d) = %q, want %q", n, got, want)
		}
	}
	if got := itoa(-42); got != "-42" {
		t.Errorf("itoa(-42) = %q", got)
	}
}
