package core

import "testing"

func TestToggleStepDefaultPitch(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)
	sq.Poll()

	sq.ToggleStep(0, 3)

	st := sq.View().Step(0, 0, 3)
	if !st.Active || st.Pitch != DefaultPitch {
		t.Errorf("Step = %+v, want active with pitch %d", st, DefaultPitch)
	}
	d := sq.Dirty().Drain()
	if d != DirtyNoteData|DirtyRTCache {
		t.Errorf("Dirty = %b, want NoteData|RTCache", d)
	}

	// Off again keeps the pitch, on again does not reset it
	sq.SetStepPitch(1, 3, 67)
	sq.ToggleStep(0, 3)
	sq.ToggleStep(0, 3)
	if st := sq.View().Step(0, 0, 3); !st.Active || st.Pitch != 67 {
		t.Errorf("Step = %+v, want active with pitch 67", st)
	}
}

func TestToggleStepsMask(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)
	sq.Poll()

	sq.ToggleSteps(0b101, 7)
	for track := uint8(0); track < NumTracks; track++ {
		want := track == 0 || track == 2
		if got := sq.View().Step(0, track, 7).Active; got != want {
			t.Errorf("Track %d step 7 active=%v, want %v", track, got, want)
		}
	}
}

func TestSetStepPitchClampsAndActivates(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)

	sq.SetStepPitch(0b11, 2, 200)
	for _, track := range []uint8{0, 1} {
		st := sq.View().Step(0, track, 2)
		if !st.Active || st.Pitch != MaxPitch {
			t.Errorf("Track %d: %+v, want active pitch %d", track, st, MaxPitch)
		}
	}

	sq.SetStepPitch(1, 2, 0)
	if st := sq.View().Step(0, 0, 2); st.Pitch != DefaultPitch {
		t.Errorf("Pitch 0 should normalise to %d, got %d", DefaultPitch, st.Pitch)
	}
}

func TestSetPatternLength(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)
	sq.Poll()

	sq.SetPatternLength(0, 10)
	for track := uint8(0); track < NumTracks; track++ {
		if got := sq.View().TrackLength(0, track); got != 10 {
			t.Errorf("Track %d length %d, want 10", track, got)
		}
	}
	d := sq.Dirty().Pending()
	if !d.Has(DirtyPattern) || !d.Has(DirtyRTCache) {
		t.Errorf("Dirty = %b, want Pattern|RTCache", d)
	}

	sq.SetPatternLength(0, 0)
	if got := sq.View().TrackLength(0, 0); got != 1 {
		t.Errorf("Length 0 should clamp to 1, got %d", got)
	}
	sq.SetPatternLength(0, 40)
	if got := sq.View().TrackLength(0, 0); got != NumSteps {
		t.Errorf("Length 40 should clamp to %d, got %d", NumSteps, got)
	}
}

func TestToggleLastTrackIsNoop(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)
	sq.Poll()

	sq.SelectOnlyTrack(3)
	sq.Dirty().Drain()

	sq.ToggleTrack(3)
	cur, _ := sq.View().SelectedTracks()
	if cur != 1<<3 {
		t.Errorf("Selection = %08b, want %08b", cur, 1<<3)
	}
	if d := sq.Dirty().Drain(); d != 0 {
		t.Errorf("No-op toggle raised %b", d)
	}
}

func TestTrackSelection(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)

	sq.SelectOnlyTrack(2)
	sq.ToggleTrack(5)
	cur, prev := sq.View().SelectedTracks()
	if cur != 1<<2|1<<5 || prev != 1<<2 {
		t.Errorf("Selection cur=%08b prev=%08b", cur, prev)
	}
	sq.ToggleTrack(2)
	if cur, _ := sq.View().SelectedTracks(); cur != 1<<5 {
		t.Errorf("Selection = %08b, want %08b", cur, 1<<5)
	}

	sq.SelectOnlyTrack(NumTracks)
	if cur, _ := sq.View().SelectedTracks(); cur != 1<<5 {
		t.Errorf("Out of range track changed selection to %08b", cur)
	}
}

func TestStepSelection(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)

	if _, ok := sq.View().SelectedStep(); ok {
		t.Fatal("Nothing should be selected initially")
	}
	sq.SelectStep(4)
	sq.SelectStep(9)
	if s, ok := sq.View().SelectedStep(); !ok || s != 9 {
		t.Errorf("Selected = %d,%v", s, ok)
	}
	if s, ok := sq.View().PrevSelectedStep(); !ok || s != 4 {
		t.Errorf("Previous = %d,%v", s, ok)
	}

	sq.ClearStepSelection()
	if _, ok := sq.View().SelectedStep(); ok {
		t.Error("Selection should be cleared")
	}
	if s, _ := sq.View().PrevSelectedStep(); s != 9 {
		t.Errorf("Previous = %d, want 9", s)
	}
	if !sq.Dirty().Pending().Has(DirtyStepSelection) {
		t.Error("Expected DirtyStepSelection")
	}
}

func TestVisiblePatternEditing(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)

	sq.SetVisiblePattern(5)
	sq.ToggleStep(0, 0)
	if cur, prev := sq.View().VisiblePattern(); cur != 5 || prev != 0 {
		t.Errorf("Visible cur=%d prev=%d", cur, prev)
	}
	if !sq.View().Step(5, 0, 0).Active {
		t.Error("Edit should land in the visible pattern")
	}
	if sq.View().Step(0, 0, 0).Active {
		t.Error("Playing pattern should be untouched")
	}

	sq.SetVisiblePattern(NumPatterns)
	if cur, _ := sq.View().VisiblePattern(); cur != 5 {
		t.Errorf("Out of range pattern accepted: %d", cur)
	}
}

func TestSongEditing(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)

	for i := 0; i < SongCapacity; i++ {
		if !sq.SongAppend(uint8(i % NumPatterns)) {
			t.Fatalf("Append %d failed", i)
		}
	}
	if sq.SongAppend(1) {
		t.Error("Append past capacity should fail")
	}
	if sq.SongAppend(NumPatterns) {
		t.Error("Append of invalid pattern should fail")
	}
	if sq.View().SongLen() != SongCapacity {
		t.Errorf("SongLen = %d", sq.View().SongLen())
	}

	sq.SetSongPosition(20)
	if sq.View().SongPosition() != 20 {
		t.Errorf("SongPosition = %d", sq.View().SongPosition())
	}

	sq.SongClear()
	if sq.View().SongLen() != 0 || sq.View().SongPosition() != 0 {
		t.Error("SongClear should empty and rewind")
	}
	sq.SetSongPosition(1)
	if sq.View().SongPosition() != 0 {
		t.Error("Position beyond an empty song accepted")
	}
}

func TestTransportDirty(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)
	sq.Poll()

	sq.TogglePlay()
	if !sq.Clock().Playing() {
		t.Fatal("TogglePlay should start")
	}
	if !sq.Dirty().Drain().Has(DirtyTransport) {
		t.Error("Expected DirtyTransport")
	}
	sq.TogglePlay()
	if sq.Clock().Playing() {
		t.Fatal("TogglePlay should pause")
	}
}
