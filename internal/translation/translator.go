package translation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/yok-tottii/EzS2ST/internal/audio"
)

// Translator converts recorded speech into English speech at the playback rate
type Translator struct {
	session *Session
	out     io.Writer
	logger  *zap.Logger

	mu             sync.Mutex
	lastTranscript string
}

// NewTranslator creates a translator. User-facing messages are written to out.
func NewTranslator(session *Session, out io.Writer, logger *zap.Logger) *Translator {
	return &Translator{
		session: session,
		out:     out,
		logger:  logger.Named("translator"),
	}
}

// TranslateAudio translates w into English and returns the first generated
// waveform resampled to audio.SampleRate. Model errors are returned as is,
// wrapped, without retrying.
func (t *Translator) TranslateAudio(ctx context.Context, w audio.Waveform) (audio.Waveform, error) {
	fmt.Fprintln(t.out, "Translating speech to English...")

	if err := t.session.Load(ctx); err != nil {
		return audio.Waveform{}, err
	}
	processor, err := t.session.Processor()
	if err != nil {
		return audio.Waveform{}, err
	}
	model, err := t.session.Model()
	if err != nil {
		return audio.Waveform{}, err
	}

	inputs, err := processor.Process(w)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to prepare audio: %w", err)
	}

	t.logger.Debug("Generating translation",
		zap.Int("samples", inputs.Samples),
		zap.String("targetLang", TargetLanguage))

	gen, err := model.Generate(ctx, inputs, TargetLanguage)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("translation failed: %w", err)
	}
	if gen == nil {
		return audio.Waveform{}, ErrNoOutput
	}
	if len(gen.Audio) == 0 {
		if strings.TrimSpace(gen.Text) == "" {
			return audio.Waveform{}, ErrNoSpeech
		}
		return audio.Waveform{}, ErrNoOutput
	}
	if len(gen.Audio) > 1 {
		t.logger.Debug("Discarding extra outputs", zap.Int("outputs", len(gen.Audio)))
	}

	samples, err := audio.Resample(gen.Audio[0], gen.SampleRate, audio.SampleRate)
	if errors.Is(err, audio.ErrTooShort) {
		return audio.Waveform{}, ErrNoOutput
	}
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to resample output: %w", err)
	}
	if len(samples) == 0 {
		return audio.Waveform{}, ErrNoOutput
	}

	t.mu.Lock()
	t.lastTranscript = gen.Text
	t.mu.Unlock()

	out := audio.Waveform{Samples: samples, SampleRate: audio.SampleRate}
	t.logger.Info("Translation finished",
		zap.Int("samples", out.Len()),
		zap.Duration("duration", out.Duration()),
		zap.Int("transcriptLength", len(gen.Text)))

	return out, nil
}

// LastTranscript returns the English text of the last successful translation
func (t *Translator) LastTranscript() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastTranscript
}
