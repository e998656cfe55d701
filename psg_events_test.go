package ymstream

import "testing"

func TestFrameEvents_Positions(t *testing.T) {
	f := testFile(3, 1, FormatYM5)
	events, total, loopSample := FrameEvents(f, 44100)

	// 44100/50 divides evenly: 882 samples per frame.
	if total != 3*882 {
		t.Errorf("total = %d, want %d", total, 3*882)
	}
	if loopSample != 882 {
		t.Errorf("loop sample = %d, want 882", loopSample)
	}
	if len(events) != 3*YM_LEGACY_REG_COUNT {
		t.Fatalf("got %d events, want %d", len(events), 3*YM_LEGACY_REG_COUNT)
	}
	for i, ev := range events {
		frame := i / YM_LEGACY_REG_COUNT
		reg := i % YM_LEGACY_REG_COUNT
		if ev.Sample != uint64(frame)*882 {
			t.Errorf("event %d: sample = %d, want %d", i, ev.Sample, frame*882)
		}
		if ev.Reg != uint8(reg) {
			t.Errorf("event %d: reg = %d, want %d", i, ev.Reg, reg)
		}
		if reg == 0 && ev.Value != uint8(frame) {
			t.Errorf("event %d: value = %d, want frame marker %d", i, ev.Value, frame)
		}
	}
}

func TestFrameEvents_SkipsHeldEnvelope(t *testing.T) {
	f := testFile(3, 0, FormatYM5)
	f.envWrites[1] = false

	events, _, _ := FrameEvents(f, 44100)
	if len(events) != 3*YM_LEGACY_REG_COUNT-1 {
		t.Fatalf("got %d events, want %d", len(events), 3*YM_LEGACY_REG_COUNT-1)
	}
	for _, ev := range events {
		if ev.Reg == ymEnvShapeReg && ev.Sample == 882 {
			t.Error("held frame must not emit an envelope shape write")
		}
	}
}

func TestFrameEvents_NoDrift(t *testing.T) {
	f := testFile(600, 0, FormatYM5)
	f.FrameRate = 60
	_, total, _ := FrameEvents(f, 44100)
	if total != 441000 {
		t.Errorf("600 frames at 60Hz/44100 = %d samples, want 441000", total)
	}

	// 44100/13 leaves a remainder each frame; the accumulator must land on
	// floor(600*44100/13) with no per-frame rounding drift.
	f.FrameRate = 13
	_, total, _ = FrameEvents(f, 44100)
	if want := uint64(600 * 44100 / 13); total != want {
		t.Errorf("total = %d, want %d", total, want)
	}
}

func TestFrameEvents_ZeroFrameRateDefaults(t *testing.T) {
	f := testFile(2, 0, FormatYM5)
	f.FrameRate = 0
	_, total, _ := FrameEvents(f, 44100)
	if total != 2*882 {
		t.Errorf("total = %d, want 50Hz fallback of %d", total, 2*882)
	}
}
