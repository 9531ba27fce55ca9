package recording

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// StopTrigger blocks until the user asks to stop recording
type StopTrigger interface {
	Wait(ctx context.Context) error
}

// TriggerFunc adapts a function to StopTrigger
type TriggerFunc func(ctx context.Context) error

// Wait calls f(ctx)
func (f TriggerFunc) Wait(ctx context.Context) error {
	return f(ctx)
}

// EnterTrigger fires when a line (or EOF) is read from the reader
type EnterTrigger struct {
	mu     sync.Mutex
	reader *bufio.Reader
}

// NewEnterTrigger creates a trigger reading lines from r, usually os.Stdin
func NewEnterTrigger(r io.Reader) *EnterTrigger {
	return &EnterTrigger{reader: bufio.NewReader(r)}
}

// Wait returns once a line has been read. On cancellation it returns
// ctx.Err() immediately; the pending read finishes in the background.
func (t *EnterTrigger) Wait(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		_, err := t.reader.ReadString('\n')
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read stop signal: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PressSource delivers key presses, such as a registered global hotkey
type PressSource interface {
	Presses() <-chan struct{}
}

// HotkeyTrigger fires on the next press from its source
type HotkeyTrigger struct {
	source PressSource
}

// NewHotkeyTrigger creates a trigger listening to source
func NewHotkeyTrigger(source PressSource) *HotkeyTrigger {
	return &HotkeyTrigger{source: source}
}

// Wait returns on the next press. If the source is closed meanwhile it
// waits for ctx instead.
func (t *HotkeyTrigger) Wait(ctx context.Context) error {
	select {
	case _, ok := <-t.source.Presses():
		if ok {
			return nil
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	<-ctx.Done()
	return ctx.Err()
}

// AnyTrigger returns a trigger that fires as soon as one of triggers does
func AnyTrigger(triggers ...StopTrigger) StopTrigger {
	if len(triggers) == 1 {
		return triggers[0]
	}
	return anyTrigger(triggers)
}

type anyTrigger []StopTrigger

func (a anyTrigger) Wait(ctx context.Context) error {
	if len(a) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan error, len(a))
	for _, t := range a {
		go func(t StopTrigger) {
			results <- t.Wait(ctx)
		}(t)
	}

	return <-results
}
