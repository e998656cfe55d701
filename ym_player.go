// ym_player.go - Restartable frame sequence with loop and effect events.

package ymstream

import "fmt"

// PlayerStep is the per-frame output handed to a playback host: the full
// register snapshot plus everything decoded out of the overloaded bits.
type PlayerStep struct {
	Index    uint32
	Frame    []uint8 // YM_REG_COUNT slots; read-only view into the YMFile
	EnvWrite bool    // envelope shape register was written this frame
	Effects  []FxTrigger
	Drums    []DigiDrumTrigger

	// Err flags a non-fatal event on this step, currently a digi-drum
	// trigger whose sample index is outside the file's table. The frame
	// itself is still valid.
	Err error
}

// Player walks the frames of a decoded file one per call, wrapping to the
// loop frame at the end. It holds only a cursor: share the YMFile across
// players, give each playback session its own Player. Not safe for
// concurrent advancement.
type Player struct {
	file   *YMFile
	cursor uint32
	done   bool
	loop   bool
}

func NewPlayer(file *YMFile) *Player {
	return &Player{file: file, loop: true}
}

// SetLoop disables or re-enables the file's native loop-forever behavior.
// With looping off the sequence ends after one pass.
func (p *Player) SetLoop(loop bool) {
	p.loop = loop
}

// Cursor returns the frame index the next call to Next will produce.
func (p *Player) Cursor() uint32 {
	return p.cursor
}

// Rewind resets the sequence to frame 0. Explicit only; reaching the end
// of a non-looping song does not rewind.
func (p *Player) Rewind() {
	p.cursor = 0
	p.done = false
}

// Next produces the snapshot and effect events for the current frame and
// advances the cursor. After the final frame the cursor wraps to the loop
// frame when one exists (loop frame below the frame count); otherwise the
// sequence is exhausted and Next returns ok == false from then on.
func (p *Player) Next() (PlayerStep, bool) {
	frameCount := p.file.FrameCount()
	if p.done || p.cursor >= frameCount {
		return PlayerStep{}, false
	}

	step := PlayerStep{
		Index:    p.cursor,
		Frame:    p.file.Frames[p.cursor],
		EnvWrite: p.file.EnvelopeWritten(p.cursor),
	}
	step.Effects = decodeFrameEffects(p.file.Version, step.Frame)
	for _, fx := range step.Effects {
		if fx.Type != FxDigiDrum {
			continue
		}
		if int(fx.Value) >= len(p.file.DigiDrums) {
			step.Err = fmt.Errorf("ym: digi-drum sample %d out of range (file has %d)",
				fx.Value, len(p.file.DigiDrums))
			continue
		}
		step.Drums = append(step.Drums, DigiDrumTrigger{
			Sample:  uint16(fx.Value),
			Divisor: fx.Divisor,
			Voice:   fx.Voice,
		})
	}

	p.cursor++
	if p.cursor >= frameCount {
		if p.loop && p.file.LoopFrame < frameCount {
			p.cursor = p.file.LoopFrame
		} else {
			p.done = true
		}
	}
	return step, true
}
