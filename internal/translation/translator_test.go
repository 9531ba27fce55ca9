package translation

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/yok-tottii/EzS2ST/internal/audio"
)

func newTestTranslator(t *testing.T, model Model) *Translator {
	t.Helper()
	return NewTranslator(NewSession(staticFactory(model), zaptest.NewLogger(t)), io.Discard, zaptest.NewLogger(t))
}

func testWaveform(n int) audio.Waveform {
	return audio.Waveform{Samples: make([]float32, n), SampleRate: audio.SampleRate}
}

func TestTranslateAudio(t *testing.T) {
	model := &mockModel{gen: &Generation{
		Audio: [][]float32{
			make([]float32, 16000),
			make([]float32, 99),
		},
		SampleRate: audio.SampleRate,
		Text:       "Hello there.",
	}}

	var out bytes.Buffer
	tr := NewTranslator(NewSession(staticFactory(model), zaptest.NewLogger(t)), &out, zaptest.NewLogger(t))

	w, err := tr.TranslateAudio(context.Background(), testWaveform(8000))
	require.NoError(t, err)

	// The first output of the batch, as a flat waveform at the playback rate
	assert.Equal(t, 16000, w.Len())
	assert.Equal(t, audio.SampleRate, w.SampleRate)
	assert.Equal(t, int32(1), model.calls.Load())
	assert.Equal(t, 8000, model.last.Samples)
	assert.Equal(t, "Hello there.", tr.LastTranscript())
	assert.Contains(t, out.String(), "Translating speech to English...")
}

func TestTranslateAudioResamplesOutput(t *testing.T) {
	model := &mockModel{gen: &Generation{
		Audio:      [][]float32{make([]float32, SpeechSampleRate)},
		SampleRate: SpeechSampleRate,
	}}

	w, err := newTestTranslator(t, model).TranslateAudio(context.Background(), testWaveform(100))
	require.NoError(t, err)
	assert.Equal(t, audio.SampleRate, w.Len())
	assert.Equal(t, audio.SampleRate, w.SampleRate)
}

func TestTranslateAudioNoOutput(t *testing.T) {
	tests := []struct {
		name string
		gen  *Generation
	}{
		{"nil generation", nil},
		{"empty batch with transcript", &Generation{SampleRate: SpeechSampleRate, Text: "Hi."}},
		{"empty waveform", &Generation{Audio: [][]float32{{}}, SampleRate: SpeechSampleRate}},
		{"single sample at 24k", &Generation{Audio: [][]float32{{0.2}}, SampleRate: SpeechSampleRate, Text: "Hi."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestTranslator(t, &mockModel{gen: tt.gen}).TranslateAudio(context.Background(), testWaveform(100))
			assert.ErrorIs(t, err, ErrNoOutput)
		})
	}
}

func TestTranslateAudioNoSpeech(t *testing.T) {
	model := &mockModel{gen: &Generation{SampleRate: SpeechSampleRate, Text: "  "}}

	tr := newTestTranslator(t, model)
	_, err := tr.TranslateAudio(context.Background(), testWaveform(100))
	assert.ErrorIs(t, err, ErrNoSpeech)
	assert.Empty(t, tr.LastTranscript())
}

func TestTranslateAudioModelError(t *testing.T) {
	modelErr := errors.New("rate limited")
	model := &mockModel{err: modelErr}

	tr := newTestTranslator(t, model)
	_, err := tr.TranslateAudio(context.Background(), testWaveform(100))

	assert.ErrorIs(t, err, modelErr)
	assert.Equal(t, int32(1), model.calls.Load(), "no retry")
	assert.Empty(t, tr.LastTranscript())
}

func TestTranslateAudioLoadError(t *testing.T) {
	s := NewSession(func(ctx context.Context) (Model, error) {
		return nil, errors.New("model not found")
	}, zaptest.NewLogger(t))

	_, err := NewTranslator(s, io.Discard, zaptest.NewLogger(t)).TranslateAudio(context.Background(), testWaveform(100))
	assert.ErrorContains(t, err, "model not found")
}
