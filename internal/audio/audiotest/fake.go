// Package audiotest provides an in-memory audio.Driver for tests.
package audiotest

import (
	"context"
	"errors"
	"sync"

	"github.com/yok-tottii/EzS2ST/internal/audio"
)

// Driver is a fake audio.Driver. Chunks queued with Feed are delivered from a
// separate goroutine once the input stream starts, reusing one buffer the way
// a real driver does.
type Driver struct {
	mu sync.Mutex

	Devices  []audio.Device
	OpenErr  error
	PlayErr  error
	feed     []audio.Chunk
	statuses []audio.Status
	streams  []*Stream
	played   []PlayCall
	closed   bool
}

// PlayCall records one Play invocation
type PlayCall struct {
	Waveform audio.Waveform
	Config   audio.Config
}

// NewDriver creates an empty fake driver
func NewDriver() *Driver {
	return &Driver{}
}

// Feed queues chunks (and optional per-chunk status) for the next input stream
func (d *Driver) Feed(chunks []audio.Chunk, statuses ...audio.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.feed = append(d.feed, chunks...)
	d.statuses = append(d.statuses, statuses...)
}

func (d *Driver) ListDevices() ([]audio.Device, error) {
	return d.Devices, nil
}

func (d *Driver) OpenInput(config audio.Config, handler audio.ChunkHandler) (audio.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	s := &Stream{
		Config:   config,
		handler:  handler,
		chunks:   d.feed,
		statuses: d.statuses,
		done:     make(chan struct{}),
	}
	d.feed = nil
	d.statuses = nil
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *Driver) Play(ctx context.Context, w audio.Waveform, config audio.Config) error {
	d.mu.Lock()
	d.played = append(d.played, PlayCall{Waveform: w, Config: config})
	err := d.PlayErr
	d.mu.Unlock()

	if err != nil {
		return err
	}
	return ctx.Err()
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Streams returns every input stream opened so far
func (d *Driver) Streams() []*Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Stream(nil), d.streams...)
}

// Played returns every Play call so far
func (d *Driver) Played() []PlayCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]PlayCall(nil), d.played...)
}

// Closed reports whether Close was called
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Stream is a fake audio.Stream
type Stream struct {
	mu       sync.Mutex
	Config   audio.Config
	handler  audio.ChunkHandler
	chunks   []audio.Chunk
	statuses []audio.Status
	started  bool
	stopped  bool
	closed   bool
	done     chan struct{}
}

func (s *Stream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("stream closed")
	}
	if s.started {
		return errors.New("stream already started")
	}
	s.started = true
	go s.deliver()
	return nil
}

func (s *Stream) deliver() {
	defer close(s.done)

	var buf []float32
	for i, c := range s.chunks {
		buf = append(buf[:0], c.Data...)
		var status audio.Status
		if i < len(s.statuses) {
			status = s.statuses[i]
		}
		s.handler(audio.Chunk{Data: buf, Channels: c.Channels}, status)
		// Simulate the driver reusing its buffer
		for j := range buf {
			buf[j] = 0
		}
	}
}

// Delivered blocks until every queued chunk has been handed to the callback
func (s *Stream) Delivered() <-chan struct{} {
	return s.done
}

func (s *Stream) Stop() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if started {
		<-s.done
	}

	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	return nil
}

func (s *Stream) Close() error {
	if err := s.Stop(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// IsClosed reports whether Close was called
func (s *Stream) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
