// ym_effects.go - Special-effect decoding for overloaded register bits.

package ymstream

// The formats smuggle effect control bits into the high nibbles of the
// coarse-period registers 1 and 3, the predivisor bits of registers 6 and
// 8, and the two virtual registers 14 and 15. This file is the only place
// those bits are interpreted; everything downstream works with decoded
// triggers.

type FxType uint8

const (
	FxSidVoice FxType = iota
	FxDigiDrum
	FxSinusSid
	FxSyncBuzzer
)

func (t FxType) String() string {
	switch t {
	case FxSidVoice:
		return "sid voice"
	case FxDigiDrum:
		return "digi-drum"
	case FxSinusSid:
		return "sinus sid"
	case FxSyncBuzzer:
		return "sync buzzer"
	}
	return "unknown"
}

// FxTrigger is one decoded effect activation for one frame.
type FxTrigger struct {
	Type         FxType
	Voice        uint8  // 0..2 (A, B, C)
	Divisor      uint32 // MFP timer divisor; effect rate = MFP_TIMER_HZ / Divisor
	Value        uint8  // effect parameter from the voice volume register
	RestartTimer bool   // SID voice only (YM4/YM5 bank 0)
}

// DigiDrumTrigger resolves an FxDigiDrum activation for the playback layer.
type DigiDrumTrigger struct {
	Sample  uint16
	Divisor uint32
	Voice   uint8
}

// mfpPrediv maps the top 3 bits of registers 6/8 to the MFP timer
// predivisor. An encoded 0 means the timer is off.
var mfpPrediv = [8]uint32{0, 4, 10, 16, 50, 64, 100, 200}

func timerDivisor(predivByte, divByte uint8) uint32 {
	return mfpPrediv[predivByte>>5] * uint32(divByte)
}

// fxBank describes where one of the two effect control nibbles keeps its
// timer fields.
type fxBank struct {
	ctrlReg    int // high nibble holds the control bits
	predivReg  int // top 3 bits hold the MFP predivisor
	divisorReg int // virtual register with the 8-bit divisor
}

var fxBanks = [2]fxBank{
	{ctrlReg: 1, predivReg: 6, divisorReg: 14},
	{ctrlReg: 3, predivReg: 8, divisorReg: 15},
}

// decodeFrameEffects returns the effect activations encoded in one frame
// snapshot, in bank order. Frames with no active effects return nil.
func decodeFrameEffects(version Format, frame []uint8) []FxTrigger {
	switch version {
	case FormatYM2:
		return decodeYM2Effects(frame)
	case FormatYM3, FormatYM3b:
		return nil
	case FormatYM6:
		return decodeBankEffects(frame, true)
	default: // YM4, YM5
		return decodeBankEffects(frame, false)
	}
}

// decodeBankEffects handles the YM4/YM5/YM6 control nibbles. In YM5 the
// banks have fixed roles (bank 0 SID voice, bank 1 digi-drum); YM6 lets
// bits 6-7 select any of the four effect types per bank.
func decodeBankEffects(frame []uint8, selectable bool) []FxTrigger {
	var triggers []FxTrigger
	for bank, layout := range fxBanks {
		ctrl := frame[layout.ctrlReg]
		voiceBits := (ctrl >> 4) & 0x3
		if voiceBits == 0 {
			continue
		}
		voice := voiceBits - 1

		fx := FxType(bank) // fixed roles: bank 0 = SID voice, bank 1 = digi-drum
		restart := false
		if selectable {
			fx = FxType(ctrl >> 6)
		} else if bank == 0 {
			restart = ctrl&0x40 != 0
		}

		divisor := timerDivisor(frame[layout.predivReg], frame[layout.divisorReg])
		if divisor == 0 {
			continue
		}

		value := frame[8+voice] & 0x1F
		triggers = append(triggers, FxTrigger{
			Type:         fx,
			Voice:        voice,
			Divisor:      divisor,
			Value:        value,
			RestartTimer: restart,
		})
	}
	return triggers
}

// decodeYM2Effects recognizes the only effect that format knows: bit 7 of
// the voice C volume register starts one of the 40 built-in drum samples,
// clocked at MFP_TIMER_HZ / (4 * reg12).
func decodeYM2Effects(frame []uint8) []FxTrigger {
	volC := frame[10]
	if volC&0x80 == 0 {
		return nil
	}
	divisor := 4 * uint32(frame[12])
	if divisor == 0 {
		return nil
	}
	return []FxTrigger{{
		Type:    FxDigiDrum,
		Voice:   2,
		Divisor: divisor,
		Value:   volC & 0x7F,
	}}
}

// YM2SampleEnds lists the end offsets of the 40 drum samples baked into
// the historical YM2 player. The sample ROM itself is not distributed with
// this package; hosts that have it can slice it with this table.
var YM2SampleEnds = [40]int{
	631, 1262, 1752, 2242, 2941, 3446, 4173, 4653,
	6761, 10992, 11370, 12897, 13155, 13413, 13864, 15659,
	15930, 16563, 17942, 18089, 18228, 18313, 18463, 18970,
	19200, 19320, 19591, 19884, 20275, 20666, 21057, 21464,
	21871, 22278, 22595, 23002, 23313, 23772, 24101, 24757,
}
