//go:build headless

package ymstream

// AudioSink pushes a SongRenderer's output to the host audio device.
type AudioSink interface {
	SetSource(r *SongRenderer)
	Start()
	Stop()
	Close()
	IsStarted() bool
}

type nullSink struct {
	src     *SongRenderer
	started bool
}

func NewAudioSink(sampleRate int) (AudioSink, error) {
	return &nullSink{}, nil
}

func (s *nullSink) SetSource(r *SongRenderer) {
	s.src = r
}

func (s *nullSink) Start() {
	s.started = true
}

func (s *nullSink) Stop() {
	s.started = false
}

func (s *nullSink) Close() {
	s.started = false
}

func (s *nullSink) IsStarted() bool {
	return s.started
}
