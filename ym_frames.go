// ym_frames.go - Frame reconstruction: de-transposition and carry-forward.

package ymstream

import "fmt"

// ymEnvHoldSentinel in the envelope-shape register means "keep the previous
// value"; rewriting the real register would retrigger the hardware envelope.
const ymEnvHoldSentinel = 0xFF

const ymEnvShapeReg = 13

// reconstructFrames converts the raw payload block into frame-major
// snapshots of YM_REG_COUNT slots each.
//
// Interleaved payloads are register-major: the byte for frame f, register r
// sits at offset r*frameCount+f. The strided gather below undoes that
// transposition; swapping the stride order produces audibly wrong output
// without crashing, so the indexing must stay exactly as written.
//
// A payload shorter than frameCount*regWidth is fatal. A longer one is
// accepted with the tail ignored (some encoders pad, and the optional End!
// tag follows the block).
func reconstructFrames(payload []byte, frameCount, regWidth int, interleaved bool) ([][]uint8, []bool, error) {
	expected := frameCount * regWidth
	if len(payload) < expected {
		return nil, nil, fmt.Errorf("%w: need %d bytes (%d frames x %d registers), have %d",
			ErrTruncatedFrameData, expected, frameCount, regWidth, len(payload))
	}

	// Allocate single contiguous buffer for all frames
	buffer := make([]uint8, frameCount*YM_REG_COUNT)
	frames := make([][]uint8, frameCount)
	for i := 0; i < frameCount; i++ {
		start := i * YM_REG_COUNT
		frames[i] = buffer[start : start+YM_REG_COUNT : start+YM_REG_COUNT]
	}

	if interleaved {
		for reg := 0; reg < regWidth; reg++ {
			base := reg * frameCount
			for frame := 0; frame < frameCount; frame++ {
				frames[frame][reg] = payload[base+frame]
			}
		}
	} else {
		for frame := 0; frame < frameCount; frame++ {
			copy(frames[frame], payload[frame*regWidth:frame*regWidth+regWidth])
		}
	}

	envWrites := resolveEnvelopeHolds(frames)
	return frames, envWrites, nil
}

// resolveEnvelopeHolds threads a held-value accumulator across the frames:
// a stored sentinel copies the prior frame's envelope shape into the
// snapshot so every output frame is a complete register state. Frame 0
// resolves the sentinel to the chip's power-on value of 0.
func resolveEnvelopeHolds(frames [][]uint8) []bool {
	envWrites := make([]bool, len(frames))
	held := uint8(0)
	for f, frame := range frames {
		if frame[ymEnvShapeReg] == ymEnvHoldSentinel {
			frame[ymEnvShapeReg] = held
		} else {
			envWrites[f] = true
			held = frame[ymEnvShapeReg]
		}
	}
	return envWrites
}
