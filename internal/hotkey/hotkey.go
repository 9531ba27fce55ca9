//go:build !linux || hotkey

package hotkey

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

// Config holds hotkey configuration
type Config struct {
	Modifiers []hotkey.Modifier
	Key       hotkey.Key
}

// Manager manages global hotkey registration and events
type Manager struct {
	hk        *hotkey.Hotkey
	config    Config
	presses   chan struct{}
	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

// New creates a new hotkey manager
func New() *Manager {
	return &Manager{
		presses:   make(chan struct{}, 1),
		stopChan:  make(chan struct{}),
	}
}

// Register registers the hotkey with the system and starts emitting events
func (m *Manager) Register(config Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("hotkey is already running, call Close() first")
	}

	m.config = config

	// Recreate channels (they may have been closed by a previous Close())
	m.stopChan = make(chan struct{})
	m.presses = make(chan struct{}, 1)

	hk := hotkey.New(m.config.Modifiers, m.config.Key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("failed to register hotkey: %w", err)
	}

	m.hk = hk
	m.running = true

	m.wg.Add(1)
	go m.listen(hk, m.presses, m.stopChan)

	return nil
}

// listen forwards key presses until stop is closed. Key releases are
// drained and dropped. A press is dropped when one is already pending.
func (m *Manager) listen(hk *hotkey.Hotkey, presses chan<- struct{}, stop <-chan struct{}) {
	defer m.wg.Done()

	for {
		select {
		case <-hk.Keydown():
		case <-hk.Keyup():
			continue
		case <-stop:
			return
		}

		select {
		case presses <- struct{}{}:
		default:
		}
	}
}

// Presses returns a channel receiving one value per hotkey press. It is
// closed by Close.
func (m *Manager) Presses() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presses
}

// Close unregisters the hotkey and stops listening
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	close(m.stopChan)
	m.wg.Wait()

	// Keep going on error so the next Register() is still possible
	var unregisterErr error
	if m.hk != nil {
		if err := m.hk.Unregister(); err != nil {
			unregisterErr = fmt.Errorf("failed to unregister hotkey: %w", err)
		}
		m.hk = nil
	}

	// Notify consumers of shutdown
	close(m.presses)

	m.running = false

	return unregisterErr
}

// IsRunning returns whether the hotkey is currently registered and running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
