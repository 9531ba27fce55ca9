// Package translation turns a recorded utterance into synthesized English speech.
package translation

import (
	"context"
	"errors"
	"fmt"

	"github.com/yok-tottii/EzS2ST/internal/audio"
)

// TargetLanguage is the only supported output language (ISO 639-3)
const TargetLanguage = "eng"

var (
	// ErrNoOutput is returned when the model produced no audio
	ErrNoOutput = errors.New("model returned no audio output")
	// ErrNoSpeech is returned when no speech was recognized in the recording
	ErrNoSpeech = errors.New("no speech recognized")
	// ErrUnsupportedLanguage is returned for any target language other than TargetLanguage
	ErrUnsupportedLanguage = errors.New("unsupported target language")
	// ErrNotLoaded is returned when the model session is used before Load
	ErrNotLoaded = errors.New("translation model is not loaded")
)

// Inputs is the model-ready form of a waveform
type Inputs struct {
	WAV        []byte // mono 16-bit PCM WAV
	SampleRate int
	Samples    int
}

// Generation is the result of one model call
type Generation struct {
	Audio      [][]float32 // one waveform per output in the batch
	SampleRate int
	Text       string // English transcript, when the model provides one
}

// Model translates prepared speech into speech in targetLang
type Model interface {
	Generate(ctx context.Context, inputs *Inputs, targetLang string) (*Generation, error)
}

// Processor converts waveforms into model inputs
type Processor struct {
	sampleRate int
}

// NewProcessor creates a processor that accepts audio at the capture rate
func NewProcessor() *Processor {
	return &Processor{sampleRate: audio.SampleRate}
}

// Process validates the sample rate and packs the waveform as WAV
func (p *Processor) Process(w audio.Waveform) (*Inputs, error) {
	if w.SampleRate != p.sampleRate {
		return nil, fmt.Errorf("unexpected sample rate: got %d Hz, want %d Hz", w.SampleRate, p.sampleRate)
	}

	wav, err := audio.EncodeWAV(audio.Float32ToPCM16(w.Samples), w.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}

	return &Inputs{WAV: wav, SampleRate: w.SampleRate, Samples: w.Len()}, nil
}

// checkLanguage rejects targets other than TargetLanguage
func checkLanguage(targetLang string) error {
	if targetLang != TargetLanguage {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, targetLang)
	}
	return nil
}
