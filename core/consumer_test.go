package core

import "testing"

func TestPollRebuildsOnRTCache(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)
	first := sq.Poll()
	if !first.Dirty.Has(DirtyPattern) || first.Dirty.Has(DirtyRTCache) {
		t.Errorf("First frame dirty = %b, want everything but RTCache", first.Dirty)
	}

	builds := sq.Cache().Builds()
	sq.ToggleStep(0, 0)
	f := sq.Poll()
	if !f.Dirty.Has(DirtyNoteData) {
		t.Errorf("Frame dirty = %b", f.Dirty)
	}
	if sq.Cache().Builds() != builds+1 {
		t.Errorf("Expected one rebuild, got %d", sq.Cache().Builds()-builds)
	}

	buf, idx := sq.Cache().Acquire()
	mask := buf.Tracks[0].GateMask
	sq.Cache().Release(idx)
	if mask != 1 {
		t.Errorf("GateMask = %016b, want 1", mask)
	}

	if !sq.Poll().Idle() {
		t.Error("Nothing changed, frame should be idle")
	}
}

func TestPollReportsStepChange(t *testing.T) {
	sq, timer, _ := newTestSequencer(t, 120)
	sq.Poll()

	sq.Play()
	f := sq.Poll()
	if !f.StepChanged || f.Step != 0 || !f.Playing {
		t.Errorf("Frame after play = %+v", f)
	}

	runUntil(timer, sq.Clock(), 125000, 0)
	f = sq.Poll()
	if !f.StepChanged || f.Step != 1 || f.PrevStep != 0 {
		t.Errorf("Frame after advance = %+v", f)
	}

	f = sq.Poll()
	if f.StepChanged || f.PrevStep != 1 {
		t.Errorf("Repeated poll = %+v", f)
	}
}

func TestSongAdvancesOnWrap(t *testing.T) {
	sq, timer, _ := newTestSequencer(t, 120)
	sq.SetPatternLength(1, 4)
	sq.SetPatternLength(2, 4)
	sq.SongAppend(1)
	sq.SongAppend(2)
	sq.SetPlayMode(PlaySong)
	sq.Poll()

	if sq.View().PlayingPattern() != 1 {
		t.Fatalf("Playing = %d, want 1", sq.View().PlayingPattern())
	}

	sq.Play()
	runUntil(timer, sq.Clock(), 2*125000, 0)
	sq.Poll()
	if sq.View().SongPosition() != 0 {
		t.Fatalf("Song advanced before the wrap")
	}

	// Step 3, the last one, has sounded and the pattern wrapped
	runUntil(timer, sq.Clock(), 3*125000, 0)
	f := sq.Poll()
	if sq.View().SongPosition() != 1 {
		t.Errorf("SongPosition = %d, want 1", sq.View().SongPosition())
	}
	if !f.Dirty.Has(DirtyPattern) {
		t.Errorf("Song advance should raise DirtyPattern, got %b", f.Dirty)
	}
	buf, idx := sq.Cache().Acquire()
	pat := buf.Pattern
	sq.Cache().Release(idx)
	if pat != 2 {
		t.Errorf("Cache pattern = %d, want 2", pat)
	}

	// Stop rewinds the song
	sq.Stop()
	sq.Poll()
	if sq.View().SongPosition() != 0 {
		t.Errorf("Stop should rewind the song, at %d", sq.View().SongPosition())
	}
}

func TestPatternModeIgnoresWraps(t *testing.T) {
	sq, timer, _ := newTestSequencer(t, 120)
	sq.SongAppend(3)
	sq.SongAppend(4)
	sq.SetPatternLength(0, 2)
	sq.Poll()

	sq.Play()
	runUntil(timer, sq.Clock(), 4*125000, 0)
	sq.Poll()
	if sq.View().SongPosition() != 0 {
		t.Errorf("Pattern mode moved the song to %d", sq.View().SongPosition())
	}
}

func TestRebuildCycles(t *testing.T) {
	sq, _, _ := newTestSequencer(t, 120)
	var ticks uint32 = 0xFFFFFFF0
	sq.SetCycleCounter(func() uint32 {
		ticks += 0x20
		return ticks
	})

	sq.ToggleStep(0, 0)
	sq.Poll()
	if got := sq.LastRebuildCycles(); got != 0x20 {
		t.Errorf("LastRebuildCycles = %#x, want 0x20", got)
	}
}
