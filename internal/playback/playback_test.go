package playback

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
	"github.com/yok-tottii/EzS2ST/internal/audio/audiotest"
)

func TestPlayAudio(t *testing.T) {
	driver := audiotest.NewDriver()
	config := audio.DefaultConfig()
	config.OutputDeviceID = 3

	var out bytes.Buffer
	p := NewPlayer(driver, config, &out, zaptest.NewLogger(t))

	w := audio.Waveform{Samples: []float32{0.1, 0.2, 0.3}, SampleRate: 24000}
	require.NoError(t, p.PlayAudio(context.Background(), w, audio.SampleRate))

	played := driver.Played()
	require.Len(t, played, 1)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, played[0].Waveform.Samples)
	assert.Equal(t, audio.SampleRate, played[0].Config.SampleRate)
	assert.Equal(t, audio.SampleRate, played[0].Waveform.SampleRate)
	assert.Equal(t, 1, played[0].Config.Channels)
	assert.Equal(t, 3, played[0].Config.OutputDeviceID)
	assert.Contains(t, out.String(), "Playing translated audio...")
}

func TestPlayAudioEmptyIsNoop(t *testing.T) {
	driver := audiotest.NewDriver()
	var out bytes.Buffer
	p := NewPlayer(driver, audio.DefaultConfig(), &out, zaptest.NewLogger(t))

	require.NoError(t, p.PlayAudio(context.Background(), audio.Waveform{}, audio.SampleRate))
	assert.Empty(t, driver.Played())
	assert.Empty(t, out.String())
}

func TestPlayAudioInvalidRate(t *testing.T) {
	p := NewPlayer(audiotest.NewDriver(), audio.DefaultConfig(), io.Discard, zaptest.NewLogger(t))

	err := p.PlayAudio(context.Background(), audio.Waveform{Samples: []float32{0}}, 0)
	assert.Error(t, err)
}

func TestPlayAudioDriverError(t *testing.T) {
	driver := audiotest.NewDriver()
	driver.PlayErr = errors.New("device unplugged")
	p := NewPlayer(driver, audio.DefaultConfig(), io.Discard, zaptest.NewLogger(t))

	err := p.PlayAudio(context.Background(), audio.Waveform{Samples: []float32{0}}, audio.SampleRate)
	assert.ErrorContains(t, err, "device unplugged")
}

func TestPlayAudioCancelled(t *testing.T) {
	driver := audiotest.NewDriver()
	p := NewPlayer(driver, audio.DefaultConfig(), io.Discard, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.PlayAudio(ctx, audio.Waveform{Samples: []float32{0}}, audio.SampleRate)
	assert.ErrorIs(t, err, context.Canceled)
}
