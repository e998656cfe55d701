// psg_events.go - Frame-to-sample event scheduling for PSG hosts.

package ymstream

// PSGEvent is one register write scheduled at an absolute output sample
// position. Hosts that drive a chip emulator per-sample consume these
// instead of whole frames.
type PSGEvent struct {
	Sample uint64
	Reg    uint8
	Value  uint8
}

// FrameEvents flattens the decoded frames into a sample-timestamped write
// stream for the given output rate. Frame boundaries are placed with a
// rational accumulator so no drift builds up when the sample rate is not a
// multiple of the frame rate.
//
// Only the 14 hardware registers are emitted; the envelope shape register
// is skipped on frames that held the previous value, so replaying the
// stream does not retrigger envelopes the source never retriggered.
//
// Returns the events, the total sample length of one pass, and the sample
// position of the loop frame.
func FrameEvents(ym *YMFile, sampleRate int) ([]PSGEvent, uint64, uint64) {
	samplesPerFrameNum := uint64(sampleRate)
	samplesPerFrameDen := uint64(ym.FrameRate)
	if samplesPerFrameDen == 0 {
		samplesPerFrameDen = YM_DEFAULT_FRAME_RATE
	}

	events := make([]PSGEvent, 0, len(ym.Frames)*YM_LEGACY_REG_COUNT)
	acc := uint64(0)
	samplePos := uint64(0)
	loopSample := uint64(0)

	for frameIndex, frame := range ym.Frames {
		if uint32(frameIndex) == ym.LoopFrame {
			loopSample = samplePos
		}
		for reg := 0; reg < YM_LEGACY_REG_COUNT; reg++ {
			if reg == ymEnvShapeReg && !ym.EnvelopeWritten(uint32(frameIndex)) {
				continue
			}
			events = append(events, PSGEvent{
				Sample: samplePos,
				Reg:    uint8(reg),
				Value:  frame[reg],
			})
		}
		acc += samplesPerFrameNum
		step := acc / samplesPerFrameDen
		samplePos += step
		acc -= step * samplesPerFrameDen
	}

	return events, samplePos, loopSample
}
