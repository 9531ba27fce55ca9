package recording

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/yok-tottii/EzS2ST/internal/audio"
	"github.com/yok-tottii/EzS2ST/internal/audio/audiotest"
)

// syncBuffer guards a bytes.Buffer written from the driver callback
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// afterDelivery stops once the fake driver has delivered every queued chunk
func afterDelivery(driver *audiotest.Driver) StopTrigger {
	return TriggerFunc(func(ctx context.Context) error {
		streams := driver.Streams()
		select {
		case <-streams[len(streams)-1].Delivered():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Zero(t, config.MaxDuration, "recording waits for Enter with no limit")
	assert.Equal(t, audio.SampleRate, config.Audio.SampleRate)
	assert.Equal(t, audio.Channels, config.Audio.Channels)
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{Idle, "Idle"},
		{Recording, "Recording"},
		{Processing, "Processing"},
		{State(42), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestRecordUntilEnter(t *testing.T) {
	driver := audiotest.NewDriver()
	driver.Feed([]audio.Chunk{
		monoChunk(1024, 0.25),
		monoChunk(1024, -0.25),
		monoChunk(300, 0.5),
	})

	out := &syncBuffer{}
	rec := NewRecorder(driver, DefaultConfig(), afterDelivery(driver), out, zaptest.NewLogger(t))

	w, err := rec.RecordUntilEnter(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2348, w.Len())
	assert.Equal(t, audio.SampleRate, w.SampleRate)
	assert.Equal(t, float32(0.25), w.Samples[0])
	assert.Equal(t, float32(-0.25), w.Samples[1024])
	assert.Equal(t, float32(0.5), w.Samples[2347])
	assert.Contains(t, out.String(), "Recording... Press Enter to stop recording.")

	streams := driver.Streams()
	require.Len(t, streams, 1)
	assert.True(t, streams[0].IsClosed())
	assert.Equal(t, audio.SampleRate, streams[0].Config.SampleRate)
	assert.Equal(t, 1, streams[0].Config.Channels)
	assert.Equal(t, Idle, rec.State())
}

func TestRecordUntilEnterForcesCaptureFormat(t *testing.T) {
	driver := audiotest.NewDriver()

	config := DefaultConfig()
	config.Audio.SampleRate = 44100
	config.Audio.Channels = 2

	rec := NewRecorder(driver, config, afterDelivery(driver), io.Discard, zaptest.NewLogger(t))
	_, err := rec.RecordUntilEnter(context.Background())
	require.NoError(t, err)

	assert.Equal(t, audio.SampleRate, driver.Streams()[0].Config.SampleRate)
	assert.Equal(t, audio.Channels, driver.Streams()[0].Config.Channels)
}

func TestRecordUntilEnterEmptyCapture(t *testing.T) {
	driver := audiotest.NewDriver()
	rec := NewRecorder(driver, DefaultConfig(), afterDelivery(driver), io.Discard, zaptest.NewLogger(t))

	w, err := rec.RecordUntilEnter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, w.Len())
	assert.True(t, driver.Streams()[0].IsClosed())
}

func TestRecordUntilEnterReportsStatus(t *testing.T) {
	driver := audiotest.NewDriver()
	driver.Feed(
		[]audio.Chunk{monoChunk(8, 0), monoChunk(8, 0)},
		audio.Status{},
		audio.Status{InputOverflow: true},
	)

	out := &syncBuffer{}
	rec := NewRecorder(driver, DefaultConfig(), afterDelivery(driver), out, zaptest.NewLogger(t))

	w, err := rec.RecordUntilEnter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 16, w.Len(), "status flags are not fatal")
	assert.Contains(t, out.String(), "input overflow")
}

func TestRecordUntilEnterCancel(t *testing.T) {
	driver := audiotest.NewDriver()
	driver.Feed([]audio.Chunk{monoChunk(1024, 0.1)})

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	rec := NewRecorder(driver, DefaultConfig(), NewEnterTrigger(pr), io.Discard, zaptest.NewLogger(t))
	w, err := rec.RecordUntilEnter(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, w.Len())
	require.Len(t, driver.Streams(), 1)
	assert.True(t, driver.Streams()[0].IsClosed())
	assert.Equal(t, Idle, rec.State())
}

func TestRecordUntilEnterMaxDuration(t *testing.T) {
	driver := audiotest.NewDriver()
	driver.Feed([]audio.Chunk{monoChunk(512, 0.1)})

	pr, pw := io.Pipe()
	defer pw.Close()

	config := DefaultConfig()
	config.MaxDuration = 20 * time.Millisecond

	out := &syncBuffer{}
	rec := NewRecorder(driver, config, NewEnterTrigger(pr), out, zaptest.NewLogger(t))

	w, err := rec.RecordUntilEnter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 512, w.Len())
	assert.Contains(t, out.String(), "Maximum recording duration reached")
}

func TestRecordUntilEnterOpenError(t *testing.T) {
	driver := audiotest.NewDriver()
	driver.OpenErr = errors.New("no input device")

	rec := NewRecorder(driver, DefaultConfig(), afterDelivery(driver), io.Discard, zaptest.NewLogger(t))
	_, err := rec.RecordUntilEnter(context.Background())

	assert.ErrorContains(t, err, "no input device")
	assert.Equal(t, Idle, rec.State())
}

func TestRecordUntilEnterTriggerError(t *testing.T) {
	driver := audiotest.NewDriver()
	failing := TriggerFunc(func(ctx context.Context) error { return errors.New("stdin closed badly") })

	rec := NewRecorder(driver, DefaultConfig(), failing, io.Discard, zaptest.NewLogger(t))
	_, err := rec.RecordUntilEnter(context.Background())

	assert.ErrorContains(t, err, "stdin closed badly")
	assert.True(t, driver.Streams()[0].IsClosed())
}

func TestRecordUntilEnterAlreadyRecording(t *testing.T) {
	driver := audiotest.NewDriver()
	release := make(chan struct{})
	trigger := TriggerFunc(func(ctx context.Context) error {
		<-release
		return nil
	})

	rec := NewRecorder(driver, DefaultConfig(), trigger, io.Discard, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() {
		_, err := rec.RecordUntilEnter(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return rec.State() == Recording }, time.Second, time.Millisecond)

	_, err := rec.RecordUntilEnter(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRecording)

	close(release)
	assert.NoError(t, <-done)
}
