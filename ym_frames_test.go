package ymstream

import (
	"errors"
	"testing"
)

func TestReconstructFrames_TransposeConstants(t *testing.T) {
	// Each register column holds one distinct constant; after the gather,
	// every frame must show register r == that constant. A row/column swap
	// would scramble this without any out-of-bounds access.
	const frameCount, width = 7, 16
	payload := make([]byte, frameCount*width)
	for reg := 0; reg < width; reg++ {
		for f := 0; f < frameCount; f++ {
			payload[reg*frameCount+f] = byte(0x30 + reg)
		}
	}

	frames, _, err := reconstructFrames(payload, frameCount, width, true)
	if err != nil {
		t.Fatalf("reconstructFrames failed: %v", err)
	}
	if len(frames) != frameCount {
		t.Fatalf("got %d frames, want %d", len(frames), frameCount)
	}
	for f := 0; f < frameCount; f++ {
		for reg := 0; reg < width; reg++ {
			if frames[f][reg] != byte(0x30+reg) {
				t.Fatalf("frame %d reg %d = 0x%02X, want 0x%02X (stride order broken)",
					f, reg, frames[f][reg], 0x30+reg)
			}
		}
	}
}

func TestReconstructFrames_NonInterleaved(t *testing.T) {
	const frameCount, width = 3, 16
	payload := make([]byte, frameCount*width)
	for f := 0; f < frameCount; f++ {
		for reg := 0; reg < width; reg++ {
			payload[f*width+reg] = byte(f*16 + reg)
		}
	}

	frames, _, err := reconstructFrames(payload, frameCount, width, false)
	if err != nil {
		t.Fatalf("reconstructFrames failed: %v", err)
	}
	if frames[2][5] != 0x25 {
		t.Errorf("frame 2 reg 5 = 0x%02X, want 0x25", frames[2][5])
	}
}

func TestReconstructFrames_Truncated(t *testing.T) {
	payload := make([]byte, 4*16-1)
	_, _, err := reconstructFrames(payload, 4, 16, true)
	if !errors.Is(err, ErrTruncatedFrameData) {
		t.Errorf("error = %v, want ErrTruncatedFrameData", err)
	}
}

func TestReconstructFrames_TrailingIgnored(t *testing.T) {
	payload := make([]byte, 4*16+9)
	frames, _, err := reconstructFrames(payload, 4, 16, true)
	if err != nil {
		t.Fatalf("trailing padding must be tolerated: %v", err)
	}
	if len(frames) != 4 {
		t.Errorf("got %d frames, want 4", len(frames))
	}
}

func TestReconstructFrames_LegacyWidthPads(t *testing.T) {
	payload := make([]byte, 2*14)
	for i := range payload {
		payload[i] = 0x55
	}
	frames, _, err := reconstructFrames(payload, 2, 14, true)
	if err != nil {
		t.Fatalf("reconstructFrames failed: %v", err)
	}
	if frames[0][13] != 0x55 {
		t.Errorf("reg 13 = 0x%02X, want 0x55", frames[0][13])
	}
	if frames[0][14] != 0 || frames[0][15] != 0 {
		t.Errorf("virtual registers must stay zero, got %02X %02X", frames[0][14], frames[0][15])
	}
}

func TestReconstructFrames_CarryForward(t *testing.T) {
	// Envelope shape column: write, hold, hold, write.
	const frameCount, width = 4, 16
	payload := make([]byte, frameCount*width)
	shapes := []byte{0x0A, 0xFF, 0xFF, 0x0C}
	for f, v := range shapes {
		payload[13*frameCount+f] = v
	}

	frames, envWrites, err := reconstructFrames(payload, frameCount, width, true)
	if err != nil {
		t.Fatalf("reconstructFrames failed: %v", err)
	}

	wantValues := []byte{0x0A, 0x0A, 0x0A, 0x0C}
	wantWrites := []bool{true, false, false, true}
	for f := range frames {
		if frames[f][13] != wantValues[f] {
			t.Errorf("frame %d reg 13 = 0x%02X, want 0x%02X", f, frames[f][13], wantValues[f])
		}
		if envWrites[f] != wantWrites[f] {
			t.Errorf("frame %d envWrite = %v, want %v", f, envWrites[f], wantWrites[f])
		}
	}
}

func TestReconstructFrames_SentinelOnFrameZero(t *testing.T) {
	// Frame 0 holding "previous" resolves to the power-on value 0.
	const frameCount, width = 2, 16
	payload := make([]byte, frameCount*width)
	payload[13*frameCount+0] = 0xFF
	payload[13*frameCount+1] = 0xFF

	frames, envWrites, err := reconstructFrames(payload, frameCount, width, true)
	if err != nil {
		t.Fatalf("reconstructFrames failed: %v", err)
	}
	if frames[0][13] != 0 || frames[1][13] != 0 {
		t.Errorf("held shapes = 0x%02X, 0x%02X, want 0, 0", frames[0][13], frames[1][13])
	}
	if envWrites[0] || envWrites[1] {
		t.Error("no frame wrote the envelope shape")
	}
}
