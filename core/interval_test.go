package core

import "testing"

func TestPulsesPerStep(t *testing.T) {
	tests := []struct {
		ppqn uint16
		want uint32
	}{
		{24, 6},
		{4, 1},
		{96, 1},
		{0, 1},
	}
	for _, tt := range tests {
		if got := PulsesPerStep(tt.ppqn); got != tt.want {
			t.Errorf("PulsesPerStep(%d) = %d, want %d", tt.ppqn, got, tt.want)
		}
	}
}

func TestStepIntervalAccuracy(t *testing.T) {
	const n = 1000
	for _, ppqn := range []uint16{4, 24} {
		for bpm := uint16(MinBPM); bpm <= MaxBPM; bpm++ {
			iv := NewStepInterval(bpm, ppqn)
			num := uint64(usPerMinute) * uint64(PulsesPerStep(ppqn))
			den := uint64(bpm) * uint64(ppqn)

			var sum uint64
			for i := 0; i < n; i++ {
				sum += uint64(iv.Next())
			}
			// |sum - n*num/den| < 1  <=>  |sum*den - n*num| < den
			a, b := sum*den, uint64(n)*num
			diff := a - b
			if b > a {
				diff = b - a
			}
			if diff >= den {
				t.Fatalf("bpm=%d ppqn=%d: %d steps sum to %d us, exact %d/%d",
					bpm, ppqn, n, sum, uint64(n)*num, den)
			}
		}
	}
}

func TestStepIntervalValues(t *testing.T) {
	iv := NewStepInterval(120, 24)
	if iv.Base != 125000 || iv.Rem != 0 {
		t.Errorf("120 BPM/24 PPQN: base=%d rem=%d, want 125000/0", iv.Base, iv.Rem)
	}

	iv = NewStepInterval(120, 4)
	if iv.Base != 125000 {
		t.Errorf("120 BPM/4 PPQN: base=%d, want 125000", iv.Base)
	}

	iv = NewStepInterval(MinBPM, 24)
	if iv.Base != 750000 {
		t.Errorf("20 BPM: base=%d, want 750000", iv.Base)
	}
	iv = NewStepInterval(130, 24)
	if iv.Rem == 0 {
		t.Errorf("130 BPM should carry a remainder")
	}
	first, second, third := iv.Next(), iv.Next(), iv.Next()
	for _, v := range []uint32{first, second, third} {
		if v != iv.Base && v != iv.Base+1 {
			t.Errorf("Next() = %d, want %d or %d", v, iv.Base, iv.Base+1)
		}
	}
}

func TestStepIntervalDefaults(t *testing.T) {
	iv := NewStepInterval(10, 0)
	want := NewStepInterval(MinBPM, DefaultPPQN)
	if iv.Base != want.Base || iv.Denom != want.Denom {
		t.Errorf("Clamped interval %+v, want %+v", iv, want)
	}

	iv = NewStepInterval(1000, 24)
	if iv.Base != 50000 {
		t.Errorf("Expected clamp to 300 BPM (50000 us), got %d", iv.Base)
	}
}

func TestStepIntervalReset(t *testing.T) {
	iv := NewStepInterval(130, 24)
	iv.Next()
	iv.Next()
	iv.Reset()
	if iv.Acc != 0 {
		t.Errorf("Reset left accumulator at %d", iv.Acc)
	}
}
