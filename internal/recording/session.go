package recording

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yok-tottii/EzS2ST/internal/audio"
)

// Session owns the audio captured during one recording. The driver callback
// appends to it; the recorder reads it once the stream is closed.
type Session struct {
	mu         sync.Mutex
	sampleRate int
	chunks     []audio.Chunk
	frames     int
}

// NewSession creates an empty capture session
func NewSession(sampleRate int) *Session {
	return &Session{sampleRate: sampleRate}
}

// Append stores a copy of the chunk. The driver reuses chunk.Data after the
// callback returns, so it must not be retained.
func (s *Session) Append(chunk audio.Chunk) {
	data := make([]float32, len(chunk.Data))
	copy(data, chunk.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, audio.Chunk{Data: data, Channels: chunk.Channels})
	s.frames += chunk.Frames()
}

// Chunks returns the captured chunks in arrival order
func (s *Session) Chunks() []audio.Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audio.Chunk(nil), s.chunks...)
}

// Frames returns the number of frames captured so far
func (s *Session) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Waveform concatenates the captured chunks into a single waveform
func (s *Session) Waveform() (audio.Waveform, error) {
	return Concatenate(s.Chunks(), s.sampleRate)
}

// Concatenate joins chunks along the time axis and drops the channel axis.
// Zero chunks yield an empty waveform. Every chunk must be mono.
func Concatenate(chunks []audio.Chunk, sampleRate int) (audio.Waveform, error) {
	if sampleRate <= 0 {
		return audio.Waveform{}, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	total := 0
	for i, c := range chunks {
		if c.Channels != 1 {
			return audio.Waveform{}, fmt.Errorf("chunk %d: %w (got %d channels)", i, errNotMono, c.Channels)
		}
		total += c.Frames()
	}

	samples := make([]float32, 0, total)
	for _, c := range chunks {
		samples = append(samples, c.Data...)
	}

	return audio.Waveform{Samples: samples, SampleRate: sampleRate}, nil
}

var errNotMono = errors.New("cannot squeeze channel axis of non-mono chunk")
