package audio

import (
	"context"
	"strings"
	"time"
)

const (
	// SampleRate is the fixed capture and playback rate (Hz)
	SampleRate = 16000
	// Channels is the fixed capture channel count (mono)
	Channels = 1
)

// Device represents an audio device
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	IsDefaultInput    bool
	IsDefaultOutput   bool
}

// LatencyMode defines the latency priority
type LatencyMode int

const (
	// LowLatency prioritizes low latency (real-time)
	LowLatency LatencyMode = iota
	// HighStability prioritizes stability (larger buffer)
	HighStability
)

// Config holds audio configuration
type Config struct {
	InputDeviceID   int
	OutputDeviceID  int
	SampleRate      int
	Channels        int
	FramesPerBuffer int
	Latency         LatencyMode
}

// DefaultConfig returns the default audio configuration
// Sample rate: 16kHz, Channels: 1 (mono), Latency: HighStability
func DefaultConfig() Config {
	return Config{
		InputDeviceID:   -1, // -1 means use default device
		OutputDeviceID:  -1,
		SampleRate:      SampleRate,
		Channels:        Channels,
		FramesPerBuffer: 1024,
		Latency:         HighStability,
	}
}

// Waveform is a 1-D sequence of samples at a known sample rate
type Waveform struct {
	Samples    []float32
	SampleRate int
}

// Len returns the number of samples
func (w Waveform) Len() int {
	return len(w.Samples)
}

// Duration returns the playing time of the waveform
func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(w.Samples)) * time.Second / time.Duration(w.SampleRate)
}

// Chunk is one buffer delivered by the driver, shape (Frames, Channels)
// stored row-major (interleaved)
type Chunk struct {
	Data     []float32
	Channels int
}

// Frames returns the number of frames in the chunk
func (c Chunk) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Data) / c.Channels
}

// Status holds the flags a driver reports alongside a buffer
type Status struct {
	InputUnderflow  bool
	InputOverflow   bool
	OutputUnderflow bool
	OutputOverflow  bool
	PrimingOutput   bool
}

// IsZero reports whether no flag is set
func (s Status) IsZero() bool {
	return s == Status{}
}

// String returns the set flags, or "" when none are set
func (s Status) String() string {
	var parts []string
	if s.InputUnderflow {
		parts = append(parts, "input underflow")
	}
	if s.InputOverflow {
		parts = append(parts, "input overflow")
	}
	if s.OutputUnderflow {
		parts = append(parts, "output underflow")
	}
	if s.OutputOverflow {
		parts = append(parts, "output overflow")
	}
	if s.PrimingOutput {
		parts = append(parts, "priming output")
	}
	return strings.Join(parts, ", ")
}

// ChunkHandler receives each captured chunk. Data is owned by the driver and
// is overwritten once the handler returns.
type ChunkHandler func(chunk Chunk, status Status)

// Stream is an open input stream
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Driver is the interface for audio input and output
// This abstraction allows the recorder and player to run against fakes in tests
type Driver interface {
	// ListDevices returns the available audio devices
	ListDevices() ([]Device, error)

	// OpenInput opens (but does not start) an input stream delivering chunks to handler
	OpenInput(config Config, handler ChunkHandler) (Stream, error)

	// Play writes the waveform to the output device and blocks until it has drained
	Play(ctx context.Context, w Waveform, config Config) error

	// Close releases all resources
	Close() error
}
