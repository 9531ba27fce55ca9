package recording

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yok-tottii/EzS2ST/internal/audio"
)

// ErrAlreadyRecording is returned when a recording is requested while one is in progress
var ErrAlreadyRecording = errors.New("already recording")

// State represents the current recording state
type State int

const (
	// Idle means not recording
	Idle State = iota
	// Recording means currently recording audio
	Recording
	// Processing means the stream is being closed and the audio assembled
	Processing
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Recording:
		return "Recording"
	case Processing:
		return "Processing"
	default:
		return "Unknown"
	}
}

// Config holds configuration for the recorder
type Config struct {
	Audio       audio.Config
	MaxDuration time.Duration // 0 disables the limit
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Audio: audio.DefaultConfig(),
	}
}

// Recorder captures one clip from the input device until a stop trigger fires
type Recorder struct {
	driver  audio.Driver
	config  Config
	trigger StopTrigger
	logger  *zap.Logger

	outMu sync.Mutex
	out   io.Writer

	mu    sync.Mutex
	state State
}

// NewRecorder creates a recorder. User-facing messages are written to out.
func NewRecorder(driver audio.Driver, config Config, trigger StopTrigger, out io.Writer, logger *zap.Logger) *Recorder {
	return &Recorder{
		driver:  driver,
		config:  config,
		trigger: trigger,
		out:     out,
		logger:  logger.Named("recorder"),
		state:   Idle,
	}
}

// State returns the current recording state
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Recorder) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Recorder) println(msg string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintln(r.out, msg)
}

// RecordUntilEnter records from the input device until the stop trigger fires
// (or MaxDuration elapses) and returns the captured mono waveform. The input
// stream is closed before the buffer is read, on every return path. If ctx is
// cancelled the audio is discarded and ctx.Err() is returned.
func (r *Recorder) RecordUntilEnter(ctx context.Context) (audio.Waveform, error) {
	r.mu.Lock()
	if r.state != Idle {
		r.mu.Unlock()
		return audio.Waveform{}, ErrAlreadyRecording
	}
	r.state = Recording
	r.mu.Unlock()
	defer r.setState(Idle)

	cfg := r.config.Audio
	cfg.SampleRate = audio.SampleRate
	cfg.Channels = audio.Channels

	r.println("Recording... Press Enter to stop recording.")

	session := NewSession(cfg.SampleRate)
	stream, err := r.driver.OpenInput(cfg, func(chunk audio.Chunk, status audio.Status) {
		if !status.IsZero() {
			r.logger.Warn("Input stream status", zap.String("status", status.String()))
			r.println(status.String())
		}
		session.Append(chunk)
	})
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to open input stream: %w", err)
	}

	closed := false
	defer func() {
		if closed {
			return
		}
		if err := stream.Close(); err != nil {
			r.logger.Warn("Failed to close input stream", zap.Error(err))
		}
	}()

	if err := stream.Start(); err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to start input stream: %w", err)
	}
	r.logger.Debug("Recording started",
		zap.Int("sampleRate", cfg.SampleRate),
		zap.Int("framesPerBuffer", cfg.FramesPerBuffer))

	waitErr := r.waitForStop(ctx)

	r.setState(Processing)

	stopErr := stream.Stop()
	closed = true
	closeErr := stream.Close()

	if ctx.Err() != nil {
		r.logger.Info("Recording cancelled", zap.Int("frames", session.Frames()))
		return audio.Waveform{}, ctx.Err()
	}
	if waitErr != nil {
		return audio.Waveform{}, waitErr
	}
	if stopErr != nil {
		return audio.Waveform{}, fmt.Errorf("failed to stop input stream: %w", stopErr)
	}
	if closeErr != nil {
		return audio.Waveform{}, fmt.Errorf("failed to close input stream: %w", closeErr)
	}

	w, err := session.Waveform()
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to assemble recording: %w", err)
	}

	r.logger.Info("Recording finished",
		zap.Int("samples", w.Len()),
		zap.Duration("duration", w.Duration()))

	return w, nil
}

// waitForStop blocks on the trigger. Hitting MaxDuration counts as a stop.
func (r *Recorder) waitForStop(ctx context.Context) error {
	if r.config.MaxDuration <= 0 {
		return r.trigger.Wait(ctx)
	}

	waitCtx, cancel := context.WithTimeout(ctx, r.config.MaxDuration)
	defer cancel()

	err := r.trigger.Wait(waitCtx)
	if err != nil && ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		r.logger.Info("Maximum recording duration reached", zap.Duration("maxDuration", r.config.MaxDuration))
		r.println("Maximum recording duration reached, stopping.")
		return nil
	}
	return err
}
