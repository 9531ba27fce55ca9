package translation

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ModelFactory creates the inference model
type ModelFactory func(ctx context.Context) (Model, error)

// Session holds the processor and model. It is initialised once and is
// read-only afterwards.
type Session struct {
	factory ModelFactory
	logger  *zap.Logger

	once      sync.Once
	mu        sync.RWMutex
	loaded    bool
	processor *Processor
	model     Model
	err       error
}

// NewSession creates a session that builds its model with factory on first Load
func NewSession(factory ModelFactory, logger *zap.Logger) *Session {
	return &Session{
		factory: factory,
		logger:  logger.Named("translation_session"),
	}
}

// Load initialises the processor and model. Only the first call does any
// work; later calls return the first result.
func (s *Session) Load(ctx context.Context) error {
	s.once.Do(func() {
		s.logger.Info("Loading translation model")

		model, err := s.factory(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.err = fmt.Errorf("failed to load translation model: %w", err)
			s.logger.Warn("Failed to load translation model", zap.Error(err))
			return
		}
		s.processor = NewProcessor()
		s.model = model
		s.loaded = true
		s.logger.Info("Translation model loaded")
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Processor returns the loaded processor
func (s *Session) Processor() (*Processor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return s.processor, nil
}

// Model returns the loaded model
func (s *Session) Model() (Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return s.model, nil
}
