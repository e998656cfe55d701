// psg_synth.go - Compact AY/YM synthesizer and song renderer.

package ymstream

import "sync"

// PSGSynth renders float32 mono PCM from register snapshots: three square
// voices, the shared noise generator, the hardware envelope and digi-drum
// sample splicing. It is a demo-grade synth for the bundled player; hosts
// with a real chip emulator should consume PlayerStep or FrameEvents
// instead.
type PSGSynth struct {
	sampleRate int
	clockHz    uint32

	regs [YM_REG_COUNT]uint8

	tonePhase  [3]float64
	noisePhase float64
	noiseLFSR  uint32

	envPeriodSamples float64
	envSampleCounter float64
	envLevel         int
	envDirection     int
	envHold          bool

	drums [3]drumVoice

	// one-pole DC blocker
	dcIn  float32
	dcOut float32
}

type drumVoice struct {
	data   []uint8
	pos    float64
	step   float64
	active bool
}

// ayVolumes is the measured nonlinear DAC response of the chip family,
// normalized to 1.0.
var ayVolumes = [16]float32{
	0.0000, 0.0078, 0.0126, 0.0189,
	0.0293, 0.0494, 0.0752, 0.1390,
	0.1578, 0.2727, 0.3766, 0.4644,
	0.5927, 0.7213, 0.8606, 1.0000,
}

func NewPSGSynth(sampleRate int, clockHz uint32) *PSGSynth {
	if clockHz == 0 {
		clockHz = YM_CLOCK_ATARI_ST
	}
	s := &PSGSynth{
		sampleRate:   sampleRate,
		clockHz:      clockHz,
		noiseLFSR:    1,
		envLevel:     15,
		envDirection: -1,
	}
	s.updateEnvPeriodSamples()
	return s
}

// ApplyFrame loads the 14 hardware registers from a frame snapshot. The
// envelope generator is only retriggered when the source frame actually
// wrote the shape register.
func (s *PSGSynth) ApplyFrame(frame []uint8, envWrite bool) {
	copy(s.regs[:ymEnvShapeReg], frame[:ymEnvShapeReg])
	s.updateEnvPeriodSamples()
	if envWrite {
		s.regs[ymEnvShapeReg] = frame[ymEnvShapeReg]
		s.resetEnvelope()
	}
}

// StartDrum begins digi-drum playback on a voice at the rate the trigger's
// timer divisor encodes. The sample plays to its end or until replaced.
func (s *PSGSynth) StartDrum(voice uint8, data []uint8, divisor uint32) {
	if voice > 2 || divisor == 0 || len(data) == 0 {
		return
	}
	rate := float64(MFP_TIMER_HZ) / float64(divisor)
	s.drums[voice] = drumVoice{
		data:   data,
		step:   rate / float64(s.sampleRate),
		active: true,
	}
}

// Render synthesizes len(buf) samples into buf.
func (s *PSGSynth) Render(buf []float32) {
	toneFreq := [3]float64{}
	for ch := 0; ch < 3; ch++ {
		low := uint16(s.regs[ch*2])
		high := uint16(s.regs[ch*2+1] & 0x0F)
		period := high<<8 | low
		if period > 0 {
			toneFreq[ch] = float64(s.clockHz) / (16.0 * float64(period))
		}
	}
	noisePeriod := s.regs[6] & 0x1F
	if noisePeriod == 0 {
		noisePeriod = 1
	}
	noiseFreq := float64(s.clockHz) / (16.0 * float64(noisePeriod))

	mixer := s.regs[7]

	for i := range buf {
		s.advanceEnvelope()

		s.noisePhase += noiseFreq / float64(s.sampleRate)
		for s.noisePhase >= 1 {
			s.noisePhase--
			bit := (s.noiseLFSR ^ (s.noiseLFSR >> 3)) & 1
			s.noiseLFSR = s.noiseLFSR>>1 | bit<<16
		}
		noiseBit := s.noiseLFSR&1 != 0

		sum := float32(0)
		for ch := 0; ch < 3; ch++ {
			toneHigh := true
			if toneFreq[ch] > 0 {
				s.tonePhase[ch] += toneFreq[ch] / float64(s.sampleRate)
				if s.tonePhase[ch] >= 1 {
					s.tonePhase[ch] -= float64(int(s.tonePhase[ch]))
				}
				toneHigh = s.tonePhase[ch] < 0.5
			}

			toneOff := mixer&(1<<ch) != 0
			noiseOff := mixer&(1<<(ch+3)) != 0
			active := (toneHigh || toneOff) && (noiseBit || noiseOff)

			vol := s.regs[8+ch]
			level := int(vol & 0x0F)
			if vol&0x10 != 0 {
				level = s.envLevel
			}

			if d := &s.drums[ch]; d.active {
				// Drum playback overrides the voice: the 4-bit sample value
				// is the volume and the mixer gate is forced open.
				level = int(d.data[int(d.pos)] & 0x0F)
				active = true
				d.pos += d.step
				if int(d.pos) >= len(d.data) {
					d.active = false
				}
			}

			if active {
				sum += ayVolumes[level]
			}
		}

		raw := sum / 3
		// DC blocker keeps the unipolar chip output speaker-friendly.
		out := raw - s.dcIn + 0.995*s.dcOut
		s.dcIn = raw
		s.dcOut = out
		buf[i] = out
	}
}

func (s *PSGSynth) updateEnvPeriodSamples() {
	period := uint16(s.regs[11]) | uint16(s.regs[12])<<8
	if period == 0 {
		period = 1
	}
	s.envPeriodSamples = float64(s.sampleRate) * 256.0 * float64(period) / float64(s.clockHz)
	if s.envPeriodSamples <= 0 {
		s.envPeriodSamples = 1
	}
}

func (s *PSGSynth) resetEnvelope() {
	shape := s.regs[ymEnvShapeReg] & 0x0F
	attack := shape&0x04 != 0
	if attack {
		s.envLevel = 0
		s.envDirection = 1
	} else {
		s.envLevel = 15
		s.envDirection = -1
	}
	s.envHold = false
	s.envSampleCounter = 0
}

func (s *PSGSynth) advanceEnvelope() {
	s.envSampleCounter++
	if s.envSampleCounter < s.envPeriodSamples {
		return
	}

	steps := int(s.envSampleCounter / s.envPeriodSamples)
	s.envSampleCounter -= float64(steps) * s.envPeriodSamples

	for i := 0; i < steps; i++ {
		if s.envHold {
			break
		}

		s.envLevel += s.envDirection
		if s.envLevel > 15 {
			s.envLevel = 15
		}
		if s.envLevel < 0 {
			s.envLevel = 0
		}

		if s.envLevel == 0 || s.envLevel == 15 {
			shape := s.regs[ymEnvShapeReg] & 0x0F
			cont := shape&0x08 != 0
			hold := shape&0x02 != 0
			alt := shape&0x01 != 0

			if !cont {
				s.envLevel = 0
				s.envHold = true
				break
			}
			if hold {
				s.envHold = true
				break
			}
			if alt {
				s.envDirection = -s.envDirection
			}
		}
	}
}

// SongRenderer couples a Player to a PSGSynth and renders the song as a
// pull stream: the audio backend asks for however many samples it needs
// and the renderer steps frames underneath. Safe for one producer (the
// audio callback) plus control calls from another goroutine.
type SongRenderer struct {
	mutex  sync.Mutex
	file   *YMFile
	player *Player
	synth  *PSGSynth

	samplesPerFrameNum uint64
	samplesPerFrameDen uint64
	acc                uint64
	remaining          int

	volume float32
	paused bool
	done   bool
}

func NewSongRenderer(file *YMFile, sampleRate int) *SongRenderer {
	den := uint64(file.FrameRate)
	if den == 0 {
		den = YM_DEFAULT_FRAME_RATE
	}
	return &SongRenderer{
		file:               file,
		player:             NewPlayer(file),
		synth:              NewPSGSynth(sampleRate, file.ClockHz),
		samplesPerFrameNum: uint64(sampleRate),
		samplesPerFrameDen: den,
		volume:             1.0,
	}
}

func (r *SongRenderer) SetLoop(loop bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.player.SetLoop(loop)
}

// SetVolume scales the output; 1.0 is unity gain.
func (r *SongRenderer) SetVolume(volume float32) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if volume < 0 {
		volume = 0
	}
	r.volume = volume
}

func (r *SongRenderer) SetPaused(paused bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.paused = paused
}

func (r *SongRenderer) Rewind() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.player.Rewind()
	r.remaining = 0
	r.acc = 0
	r.done = false
}

func (r *SongRenderer) Done() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.done
}

// Render fills buf and returns the number of samples produced. A paused
// renderer produces silence; an exhausted one returns 0.
func (r *SongRenderer) Render(buf []float32) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.paused {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf)
	}

	n := 0
	for n < len(buf) {
		if r.remaining == 0 {
			step, ok := r.player.Next()
			if !ok {
				r.done = true
				break
			}
			r.applyStep(step)
			r.acc += r.samplesPerFrameNum
			r.remaining = int(r.acc / r.samplesPerFrameDen)
			r.acc -= uint64(r.remaining) * r.samplesPerFrameDen
			continue
		}

		chunk := len(buf) - n
		if chunk > r.remaining {
			chunk = r.remaining
		}
		r.synth.Render(buf[n : n+chunk])
		for i := n; i < n+chunk; i++ {
			buf[i] *= r.volume
		}
		n += chunk
		r.remaining -= chunk
	}
	return n
}

func (r *SongRenderer) applyStep(step PlayerStep) {
	r.synth.ApplyFrame(step.Frame, step.EnvWrite)
	for _, drum := range step.Drums {
		r.synth.StartDrum(drum.Voice, r.file.DigiDrums[drum.Sample], drum.Divisor)
	}
}
