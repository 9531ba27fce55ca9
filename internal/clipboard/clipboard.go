package clipboard

import (
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"
)

// Manager writes text to the system clipboard
type Manager struct {
	write func(text string) error
}

// NewManager creates a new clipboard manager
func NewManager() *Manager {
	return &Manager{
		write: robotgo.WriteAll,
	}
}

// Copy puts text on the clipboard. Blank text leaves the clipboard untouched.
func (m *Manager) Copy(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if err := m.write(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}
