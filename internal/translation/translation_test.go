package translation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yok-tottii/EzS2ST/internal/audio"
	"github.com/yok-tottii/EzS2ST/internal/audio/audiotest"
)

// mockModel is a Model returning a fixed generation
type mockModel struct {
	gen   *Generation
	err   error
	calls atomic.Int32
	last  *Inputs
}

func (m *mockModel) Generate(ctx context.Context, inputs *Inputs, targetLang string) (*Generation, error) {
	m.calls.Add(1)
	m.last = inputs
	if err := checkLanguage(targetLang); err != nil {
		return nil, err
	}
	return m.gen, m.err
}

func staticFactory(m Model) ModelFactory {
	return func(ctx context.Context) (Model, error) { return m, nil }
}

func TestProcessor(t *testing.T) {
	p := NewProcessor()

	inputs, err := p.Process(audio.Waveform{Samples: []float32{0, 0.5, -0.5}, SampleRate: audio.SampleRate})
	require.NoError(t, err)
	assert.Equal(t, 3, inputs.Samples)
	assert.Equal(t, audio.SampleRate, inputs.SampleRate)

	samples, rate, err := audiotest.DecodeWAV(inputs.WAV)
	require.NoError(t, err)
	assert.Equal(t, audio.SampleRate, rate)
	assert.Equal(t, []int16{0, 16383, -16383}, samples)
}

func TestProcessorRejectsWrongRate(t *testing.T) {
	_, err := NewProcessor().Process(audio.Waveform{Samples: []float32{0}, SampleRate: 44100})
	assert.ErrorContains(t, err, "unexpected sample rate")
}

func TestCheckLanguage(t *testing.T) {
	assert.NoError(t, checkLanguage("eng"))

	err := checkLanguage("fra")
	assert.True(t, errors.Is(err, ErrUnsupportedLanguage))
}
