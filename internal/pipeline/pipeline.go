// Package pipeline runs one record, translate and play cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/yok-tottii/EzS2ST/internal/audio"
	"github.com/yok-tottii/EzS2ST/internal/translation"
)

// Loader prepares the translation model before recording starts
type Loader interface {
	Load(ctx context.Context) error
}

// Recorder captures one clip
type Recorder interface {
	RecordUntilEnter(ctx context.Context) (audio.Waveform, error)
}

// Translator turns speech into English speech
type Translator interface {
	TranslateAudio(ctx context.Context, w audio.Waveform) (audio.Waveform, error)
	LastTranscript() string
}

// Player plays a waveform
type Player interface {
	PlayAudio(ctx context.Context, w audio.Waveform, sampleRate int) error
}

// Clipboard receives the English transcript
type Clipboard interface {
	Copy(text string) error
}

// Components are the stages of the pipeline. Clipboard is optional.
type Components struct {
	Session    Loader
	Recorder   Recorder
	Translator Translator
	Player     Player
	Clipboard  Clipboard
}

// Pipeline wires the stages together
type Pipeline struct {
	c      Components
	out    io.Writer
	logger *zap.Logger
}

// New creates a pipeline. User-facing messages are written to out.
func New(c Components, out io.Writer, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		c:      c,
		out:    out,
		logger: logger.Named("pipeline"),
	}
}

// Run loads the model, records until the user stops, then translates and
// plays the result. A recording with no audio, or with no recognizable
// speech, ends the run without error.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.c.Session.Load(ctx); err != nil {
		return err
	}

	w, err := p.c.Recorder.RecordUntilEnter(ctx)
	if err != nil {
		return fmt.Errorf("recording failed: %w", err)
	}

	if w.Len() == 0 {
		p.logger.Info("Empty recording, skipping translation")
		fmt.Fprintln(p.out, "No audio captured, nothing to translate.")
		return nil
	}

	return p.translateAndPlay(ctx, w)
}

// translateAndPlay hands the translated waveform straight to the player at the
// capture rate
func (p *Pipeline) translateAndPlay(ctx context.Context, w audio.Waveform) error {
	translated, err := p.c.Translator.TranslateAudio(ctx, w)
	if errors.Is(err, translation.ErrNoSpeech) {
		p.logger.Info("No speech recognized, skipping playback")
		fmt.Fprintln(p.out, "No speech recognized, nothing to play.")
		return nil
	}
	if err != nil {
		return err
	}

	transcript := p.c.Translator.LastTranscript()
	p.logger.Info("Translated", zap.String("transcript", transcript))

	if p.c.Clipboard != nil && transcript != "" {
		if err := p.c.Clipboard.Copy(transcript); err != nil {
			p.logger.Warn("Failed to copy transcript to clipboard", zap.Error(err))
		}
	}

	return p.c.Player.PlayAudio(ctx, translated, audio.SampleRate)
}
