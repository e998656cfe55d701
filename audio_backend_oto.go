//go:build !headless

// audio_backend_oto.go - OTO v3 audio output implementation

package ymstream

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// AudioSink pushes a SongRenderer's output to the host audio device.
type AudioSink interface {
	SetSource(r *SongRenderer)
	Start()
	Stop()
	Close()
	IsStarted() bool
}

type otoSink struct {
	ctx       *oto.Context
	player    *oto.Player
	src       atomic.Pointer[SongRenderer] // Atomic for lock-free Read()
	sampleBuf []float32                    // Pre-allocated sample buffer
	started   bool
	mutex     sync.Mutex // Only for setup/control operations
}

// NewAudioSink opens the default audio device at the given sample rate.
func NewAudioSink(sampleRate int) (AudioSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &otoSink{
		ctx:       ctx,
		sampleBuf: make([]float32, 4096),
	}, nil
}

func (s *otoSink) SetSource(r *SongRenderer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.src.Store(r)
	if s.player == nil {
		s.player = s.ctx.NewPlayer(s)
	}
}

// Read is the oto pull callback: it renders straight out of the song
// renderer into the device buffer, zero-filling when the song is over.
func (s *otoSink) Read(p []byte) (n int, err error) {
	src := s.src.Load()
	numSamples := len(p) / 4

	if len(s.sampleBuf) < numSamples {
		s.sampleBuf = make([]float32, numSamples)
	}
	samples := s.sampleBuf[:numSamples]

	rendered := 0
	if src != nil {
		rendered = src.Render(samples)
	}
	for i := rendered; i < numSamples; i++ {
		samples[i] = 0
	}

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(p)])
	return len(p), nil
}

func (s *otoSink) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.started && s.player != nil {
		s.player.Play()
		s.started = true
	}
}

func (s *otoSink) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.started && s.player != nil {
		s.player.Pause()
		s.started = false
	}
}

func (s *otoSink) Close() {
	s.Stop()
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
}

func (s *otoSink) IsStarted() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.started
}
