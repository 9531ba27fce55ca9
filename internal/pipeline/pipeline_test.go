package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/yok-tottii/EzS2ST/internal/audio"
	"github.com/yok-tottii/EzS2ST/internal/audio/audiotest"
	"github.com/yok-tottii/EzS2ST/internal/playback"
	"github.com/yok-tottii/EzS2ST/internal/recording"
	"github.com/yok-tottii/EzS2ST/internal/translation"
)

type fakeLoader struct {
	err   error
	calls int
}

func (l *fakeLoader) Load(ctx context.Context) error {
	l.calls++
	return l.err
}

type fakeRecorder struct {
	w   audio.Waveform
	err error
}

func (r *fakeRecorder) RecordUntilEnter(ctx context.Context) (audio.Waveform, error) {
	return r.w, r.err
}

type fakeTranslator struct {
	mu     sync.Mutex
	out    audio.Waveform
	text   string
	err    error
	inputs []audio.Waveform
}

func (t *fakeTranslator) TranslateAudio(ctx context.Context, w audio.Waveform) (audio.Waveform, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputs = append(t.inputs, w)
	return t.out, t.err
}

func (t *fakeTranslator) LastTranscript() string {
	return t.text
}

func (t *fakeTranslator) calls() []audio.Waveform {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]audio.Waveform(nil), t.inputs...)
}

type playCall struct {
	w          audio.Waveform
	sampleRate int
}

type fakePlayer struct {
	err   error
	plays []playCall
}

func (p *fakePlayer) PlayAudio(ctx context.Context, w audio.Waveform, sampleRate int) error {
	p.plays = append(p.plays, playCall{w: w, sampleRate: sampleRate})
	return p.err
}

type fakeClipboard struct {
	err    error
	copied []string
}

func (c *fakeClipboard) Copy(text string) error {
	c.copied = append(c.copied, text)
	return c.err
}

func waveform(n, sampleRate int) audio.Waveform {
	return audio.Waveform{Samples: make([]float32, n), SampleRate: sampleRate}
}

// sineChunks splits a sine wave of the given length into driver-sized chunks
func sineChunks(samples, framesPerBuffer int) []audio.Chunk {
	var chunks []audio.Chunk
	for start := 0; start < samples; start += framesPerBuffer {
		n := framesPerBuffer
		if start+n > samples {
			n = samples - start
		}
		data := make([]float32, n)
		for i := range data {
			data[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(start+i)/audio.SampleRate))
		}
		chunks = append(chunks, audio.Chunk{Data: data, Channels: 1})
	}
	return chunks
}

func TestRun(t *testing.T) {
	loader := &fakeLoader{}
	translated := waveform(32000, audio.SampleRate)
	translator := &fakeTranslator{out: translated, text: "Hello."}
	player := &fakePlayer{}

	p := New(Components{
		Session:    loader,
		Recorder:   &fakeRecorder{w: waveform(16000, audio.SampleRate)},
		Translator: translator,
		Player:     player,
	}, io.Discard, zaptest.NewLogger(t))

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, 1, loader.calls)
	require.Len(t, translator.calls(), 1)
	assert.Equal(t, 16000, translator.calls()[0].Len())
	require.Len(t, player.plays, 1)
	assert.Equal(t, translated, player.plays[0].w)
	assert.Equal(t, audio.SampleRate, player.plays[0].sampleRate)
}

func TestRunPlaysAtCaptureRate(t *testing.T) {
	for _, n := range []int{1, 7999, 24000, 160000} {
		player := &fakePlayer{}
		p := New(Components{
			Session:    &fakeLoader{},
			Recorder:   &fakeRecorder{w: waveform(100, audio.SampleRate)},
			Translator: &fakeTranslator{out: waveform(n, audio.SampleRate)},
			Player:     player,
		}, io.Discard, zaptest.NewLogger(t))

		require.NoError(t, p.Run(context.Background()))
		require.Len(t, player.plays, 1)
		assert.Equal(t, 16000, player.plays[0].sampleRate, "output length %d", n)
	}
}

func TestRunEmptyRecording(t *testing.T) {
	translator := &fakeTranslator{}
	player := &fakePlayer{}
	var out bytes.Buffer

	p := New(Components{
		Session:    &fakeLoader{},
		Recorder:   &fakeRecorder{w: audio.Waveform{SampleRate: audio.SampleRate}},
		Translator: translator,
		Player:     player,
	}, &out, zaptest.NewLogger(t))

	require.NoError(t, p.Run(context.Background()))
	assert.Empty(t, translator.calls())
	assert.Empty(t, player.plays)
	assert.Contains(t, out.String(), "No audio captured, nothing to translate.")
}

func TestRunLoadError(t *testing.T) {
	loadErr := errors.New("bad key")
	translator := &fakeTranslator{}

	p := New(Components{
		Session:    &fakeLoader{err: loadErr},
		Recorder:   &fakeRecorder{w: waveform(10, audio.SampleRate)},
		Translator: translator,
		Player:     &fakePlayer{},
	}, io.Discard, zaptest.NewLogger(t))

	assert.ErrorIs(t, p.Run(context.Background()), loadErr)
	assert.Empty(t, translator.calls())
}

func TestRunRecordingCancelled(t *testing.T) {
	translator := &fakeTranslator{}

	p := New(Components{
		Session:    &fakeLoader{},
		Recorder:   &fakeRecorder{err: context.Canceled},
		Translator: translator,
		Player:     &fakePlayer{},
	}, io.Discard, zaptest.NewLogger(t))

	assert.ErrorIs(t, p.Run(context.Background()), context.Canceled)
	assert.Empty(t, translator.calls())
}

func TestRunTranslationError(t *testing.T) {
	modelErr := errors.New("quota exceeded")
	player := &fakePlayer{}

	p := New(Components{
		Session:    &fakeLoader{},
		Recorder:   &fakeRecorder{w: waveform(10, audio.SampleRate)},
		Translator: &fakeTranslator{err: modelErr},
		Player:     player,
	}, io.Discard, zaptest.NewLogger(t))

	assert.ErrorIs(t, p.Run(context.Background()), modelErr)
	assert.Empty(t, player.plays)
}

func TestRunNoSpeech(t *testing.T) {
	player := &fakePlayer{}
	var out bytes.Buffer

	p := New(Components{
		Session:    &fakeLoader{},
		Recorder:   &fakeRecorder{w: waveform(16000, audio.SampleRate)},
		Translator: &fakeTranslator{err: translation.ErrNoSpeech},
		Player:     player,
	}, &out, zaptest.NewLogger(t))

	require.NoError(t, p.Run(context.Background()))
	assert.Empty(t, player.plays)
	assert.Contains(t, out.String(), "No speech recognized, nothing to play.")
}

func TestRunCopiesTranscript(t *testing.T) {
	clip := &fakeClipboard{err: errors.New("no display")}
	player := &fakePlayer{}

	p := New(Components{
		Session:    &fakeLoader{},
		Recorder:   &fakeRecorder{w: waveform(10, audio.SampleRate)},
		Translator: &fakeTranslator{out: waveform(10, audio.SampleRate), text: "Good night."},
		Player:     player,
		Clipboard:  clip,
	}, io.Discard, zaptest.NewLogger(t))

	require.NoError(t, p.Run(context.Background()), "clipboard failures are not fatal")
	assert.Equal(t, []string{"Good night."}, clip.copied)
	assert.Len(t, player.plays, 1)
}

func TestRunThreeSecondSine(t *testing.T) {
	driver := audiotest.NewDriver()
	driver.Feed(sineChunks(3*audio.SampleRate, 1024))

	trigger := recording.TriggerFunc(func(ctx context.Context) error {
		<-driver.Streams()[0].Delivered()
		return nil
	})

	var out bytes.Buffer
	logger := zaptest.NewLogger(t)
	recorder := recording.NewRecorder(driver, recording.DefaultConfig(), trigger, &out, logger)
	player := playback.NewPlayer(driver, audio.DefaultConfig(), &out, logger)

	mocked := audio.Waveform{Samples: []float32{0.1, -0.1, 0.2, -0.2}, SampleRate: audio.SampleRate}
	translator := &fakeTranslator{out: mocked}

	p := New(Components{
		Session:    &fakeLoader{},
		Recorder:   recorder,
		Translator: translator,
		Player:     player,
	}, &out, logger)

	require.NoError(t, p.Run(context.Background()))

	calls := translator.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 48000, calls[0].Len())
	assert.InDelta(t, 0.5*math.Sin(2*math.Pi*440*100/audio.SampleRate), calls[0].Samples[100], 1e-6)

	played := driver.Played()
	require.Len(t, played, 1)
	assert.Equal(t, mocked.Samples, played[0].Waveform.Samples)
	assert.Equal(t, audio.SampleRate, played[0].Config.SampleRate)

	assert.Contains(t, out.String(), "Recording... Press Enter to stop recording.")
	assert.Contains(t, out.String(), "Playing translated audio...")
}
