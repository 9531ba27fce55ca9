// Package playback plays synthesized audio on the output device.
package playback

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/yok-tottii/EzS2ST/internal/audio"
)

// Player submits waveforms to the output device
type Player struct {
	driver audio.Driver
	config audio.Config
	out    io.Writer
	logger *zap.Logger
}

// NewPlayer creates a player. config selects the output device and buffering.
func NewPlayer(driver audio.Driver, config audio.Config, out io.Writer, logger *zap.Logger) *Player {
	return &Player{
		driver: driver,
		config: config,
		out:    out,
		logger: logger.Named("player"),
	}
}

// PlayAudio plays w at sampleRate on the output device and blocks until it
// has finished. An empty waveform is a no-op.
func (p *Player) PlayAudio(ctx context.Context, w audio.Waveform, sampleRate int) error {
	if w.Len() == 0 {
		p.logger.Debug("Nothing to play")
		return nil
	}
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	fmt.Fprintln(p.out, "Playing translated audio...")

	cfg := p.config
	cfg.SampleRate = sampleRate
	cfg.Channels = 1
	w.SampleRate = sampleRate

	p.logger.Info("Playback started",
		zap.Int("samples", w.Len()),
		zap.Int("sampleRate", sampleRate),
		zap.Duration("duration", w.Duration()))

	if err := p.driver.Play(ctx, w, cfg); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("playback failed: %w", err)
	}

	p.logger.Info("Playback finished")
	return nil
}
