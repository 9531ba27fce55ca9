package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// PortAudioDriver implements Driver using PortAudio
type PortAudioDriver struct {
	mu     sync.Mutex
	open   []*portAudioStream
	closed bool
}

// NewPortAudioDriver creates a new PortAudio driver
func NewPortAudioDriver() (*PortAudioDriver, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	return &PortAudioDriver{}, nil
}

// ListDevices returns a list of available audio devices
func (d *PortAudioDriver) ListDevices() ([]Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	// A missing default is not an error here, nothing gets marked instead
	defaultInput, _ := portaudio.DefaultInputDevice()
	defaultOutput, _ := portaudio.DefaultOutputDevice()

	result := make([]Device, 0, len(devices))
	for i, dev := range devices {
		result = append(result, Device{
			ID:                i,
			Name:              dev.Name,
			MaxInputChannels:  dev.MaxInputChannels,
			MaxOutputChannels: dev.MaxOutputChannels,
			IsDefaultInput:    defaultInput != nil && dev.Name == defaultInput.Name,
			IsDefaultOutput:   defaultOutput != nil && dev.Name == defaultOutput.Name,
		})
	}

	return result, nil
}

// resolveDevice returns the device for id, or the system default when id is -1
func resolveDevice(id int, input bool) (*portaudio.DeviceInfo, error) {
	if id == -1 {
		if input {
			device, err := portaudio.DefaultInputDevice()
			if err != nil {
				return nil, fmt.Errorf("failed to get default input device: %w", err)
			}
			return device, nil
		}
		device, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default output device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	if id < 0 || id >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", id)
	}
	return devices[id], nil
}

func latencyFor(mode LatencyMode, low, high time.Duration) time.Duration {
	if mode == LowLatency {
		return low
	}
	return high
}

// OpenInput opens an input stream that delivers every buffer to handler
func (d *PortAudioDriver) OpenInput(config Config, handler ChunkHandler) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, errors.New("driver closed")
	}

	device, err := resolveDevice(config.InputDeviceID, true)
	if err != nil {
		return nil, err
	}

	if device.MaxInputChannels < config.Channels {
		return nil, fmt.Errorf("selected device '%s' (ID: %d) has %d input channels, need %d",
			device.Name, config.InputDeviceID, device.MaxInputChannels, config.Channels)
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: config.Channels,
			Latency:  latencyFor(config.Latency, device.DefaultLowInputLatency, device.DefaultHighInputLatency),
		},
		SampleRate:      float64(config.SampleRate),
		FramesPerBuffer: config.FramesPerBuffer,
	}

	channels := config.Channels
	callback := func(in []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		handler(Chunk{Data: in, Channels: channels}, statusFromFlags(flags))
	}

	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}

	s := &portAudioStream{stream: stream, driver: d}
	d.open = append(d.open, s)
	return s, nil
}

// Play writes the waveform to the output device and blocks until playback finishes
func (d *PortAudioDriver) Play(ctx context.Context, w Waveform, config Config) error {
	if w.Len() == 0 {
		return nil
	}

	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return errors.New("driver closed")
	}

	device, err := resolveDevice(config.OutputDeviceID, false)
	if err != nil {
		return err
	}

	if device.MaxOutputChannels < 1 {
		return fmt.Errorf("selected device '%s' (ID: %d) has no output channels (input-only device)",
			device.Name, config.OutputDeviceID)
	}

	framesPerBuffer := config.FramesPerBuffer
	if framesPerBuffer <= 0 {
		framesPerBuffer = DefaultConfig().FramesPerBuffer
	}
	out := make([]float32, framesPerBuffer)

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  latencyFor(config.Latency, device.DefaultLowOutputLatency, device.DefaultHighOutputLatency),
		},
		SampleRate:      float64(w.SampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, &out)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}

	for offset := 0; offset < w.Len(); offset += framesPerBuffer {
		if err := ctx.Err(); err != nil {
			stream.Abort()
			return err
		}

		n := copy(out, w.Samples[offset:])
		// Zero-pad the tail block
		for i := n; i < len(out); i++ {
			out[i] = 0
		}

		if err := stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
			stream.Abort()
			return fmt.Errorf("failed to write output stream: %w", err)
		}
	}

	// Stop waits for the queued buffers to drain
	if err := stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop output stream: %w", err)
	}

	return nil
}

// Close releases all resources
func (d *PortAudioDriver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	streams := d.open
	d.open = nil
	d.mu.Unlock()

	var firstErr error
	for _, s := range streams {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to terminate PortAudio: %w", err)
	}

	return firstErr
}

func (d *PortAudioDriver) forget(s *portAudioStream) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, o := range d.open {
		if o == s {
			d.open = append(d.open[:i], d.open[i+1:]...)
			return
		}
	}
}

// portAudioStream wraps a PortAudio input stream
type portAudioStream struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	driver  *PortAudioDriver
	running bool
	closed  bool
}

func (s *portAudioStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("stream closed")
	}
	if s.running {
		return errors.New("stream already started")
	}
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	s.running = true
	return nil
}

func (s *portAudioStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop stream: %w", err)
	}
	s.running = false
	return nil
}

// Close stops the stream if needed and releases the device. Safe to call twice.
func (s *portAudioStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	var stopErr error
	if s.running {
		stopErr = s.stream.Stop()
		s.running = false
	}

	s.closed = true
	s.driver.forget(s)

	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	if stopErr != nil {
		return fmt.Errorf("failed to stop stream: %w", stopErr)
	}
	return nil
}

func statusFromFlags(flags portaudio.StreamCallbackFlags) Status {
	return Status{
		InputUnderflow:  flags&portaudio.InputUnderflow != 0,
		InputOverflow:   flags&portaudio.InputOverflow != 0,
		OutputUnderflow: flags&portaudio.OutputUnderflow != 0,
		OutputOverflow:  flags&portaudio.OutputOverflow != 0,
		PrimingOutput:   flags&portaudio.PrimingOutput != 0,
	}
}
