// Package app wires the components of ezs2st with fx.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/yok-tottii/EzS2ST/internal/audio"
	"github.com/yok-tottii/EzS2ST/internal/clipboard"
	"github.com/yok-tottii/EzS2ST/internal/config"
	"github.com/yok-tottii/EzS2ST/internal/logger"
	"github.com/yok-tottii/EzS2ST/internal/permissions"
	"github.com/yok-tottii/EzS2ST/internal/pipeline"
	"github.com/yok-tottii/EzS2ST/internal/playback"
	"github.com/yok-tottii/EzS2ST/internal/recording"
	"github.com/yok-tottii/EzS2ST/internal/translation"
)

// Exit codes reported through fx.Shutdowner
const (
	ExitOK    = 0
	ExitError = 1
)

// IO holds the terminal streams used for user interaction
type IO struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Module provides everything except the configuration, logger and audio driver
var Module = fx.Module("ezs2st",
	fx.Provide(
		newAudioConfig,
		newStopTrigger,
		newRecorder,
		newSession,
		newTranslator,
		newPlayer,
		newPipeline,
	),
	fx.Invoke(checkPermissions, registerRunner),
)

// ConfigModule loads and validates the configuration file at path
func ConfigModule(path string) fx.Option {
	return fx.Module("config",
		fx.Provide(func() (*config.Config, error) {
			cfg, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return cfg, nil
		}),
	)
}

// LoggerModule provides the zap logger configured from *config.Config
var LoggerModule = fx.Module("logger",
	fx.Provide(NewLogger),
)

// AudioModule provides the PortAudio driver
var AudioModule = fx.Module("audio",
	fx.Provide(NewAudioDriver),
)

// NewLogger creates the application logger and syncs it on stop
func NewLogger(cfg *config.Config, lc fx.Lifecycle) (*zap.Logger, error) {
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.LogLevel
	if cfg.LogDir != "" {
		dir, err := config.ExpandPath(cfg.LogDir)
		if err != nil {
			return nil, err
		}
		logConfig.LogDir = dir
	}

	l, err := logger.New(logConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = l.Sync()
			return nil
		},
	})

	return l, nil
}

// NewAudioDriver opens PortAudio and releases it on stop
func NewAudioDriver(lc fx.Lifecycle, log *zap.Logger) (audio.Driver, error) {
	driver, err := audio.NewPortAudioDriver()
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := driver.Close(); err != nil {
				log.Warn("Failed to close audio driver", zap.Error(err))
			}
			return nil
		},
	})

	return driver, nil
}

// checkPermissions warns about missing privacy permissions. Recording is
// still attempted; the driver reports the definitive error.
func checkPermissions(cfg *config.Config, terminal IO, log *zap.Logger) {
	missing := permissions.Preflight(permissions.NewPermissionChecker(), cfg.Recording.StopHotkey.Enabled)
	for _, m := range missing {
		log.Warn("Permission not granted", zap.String("permission", m.Name), zap.Stringer("status", m.Status))
		fmt.Fprintf(terminal.ErrOut, "Warning: %s\n", m.Hint)
	}
}

func newAudioConfig(cfg *config.Config) audio.Config {
	ac := audio.DefaultConfig()
	ac.InputDeviceID = cfg.Audio.InputDeviceID
	ac.OutputDeviceID = cfg.Audio.OutputDeviceID
	ac.FramesPerBuffer = cfg.Audio.FramesPerBuffer
	if cfg.Audio.Latency == "low" {
		ac.Latency = audio.LowLatency
	}
	return ac
}

// newStopTrigger returns the Enter trigger, combined with the global hotkey
// when one is configured and supported by the build.
func newStopTrigger(cfg *config.Config, terminal IO, lc fx.Lifecycle, log *zap.Logger) recording.StopTrigger {
	enter := recording.NewEnterTrigger(terminal.In)

	if !cfg.Recording.StopHotkey.Enabled {
		return enter
	}
	hk := newHotkeyTrigger(cfg.Recording.StopHotkey, lc, log)
	if hk == nil {
		return enter
	}
	return recording.AnyTrigger(enter, hk)
}

func newRecorder(driver audio.Driver, ac audio.Config, cfg *config.Config, trigger recording.StopTrigger, terminal IO, log *zap.Logger) *recording.Recorder {
	rc := recording.DefaultConfig()
	rc.Audio = ac
	rc.MaxDuration = cfg.Recording.MaxDuration
	return recording.NewRecorder(driver, rc, trigger, terminal.Out, log)
}

func newSession(cfg *config.Config, log *zap.Logger) *translation.Session {
	factory := translation.OpenAIModelFactory(translation.OpenAIConfig{
		APIKey:           cfg.OpenAI.APIKey,
		BaseURL:          cfg.OpenAI.BaseURL,
		TranslationModel: cfg.OpenAI.TranslationModel,
		SpeechModel:      cfg.OpenAI.SpeechModel,
		Voice:            cfg.OpenAI.Voice,
		VerifyModels:     cfg.OpenAI.VerifyModels,
	}, log)
	return translation.NewSession(factory, log)
}

func newTranslator(session *translation.Session, terminal IO, log *zap.Logger) *translation.Translator {
	return translation.NewTranslator(session, terminal.Out, log)
}

func newPlayer(driver audio.Driver, ac audio.Config, terminal IO, log *zap.Logger) *playback.Player {
	return playback.NewPlayer(driver, ac, terminal.Out, log)
}

// PipelineParams holds dependencies for newPipeline
type PipelineParams struct {
	fx.In
	Config     *config.Config
	IO         IO
	Logger     *zap.Logger
	Session    *translation.Session
	Recorder   *recording.Recorder
	Translator *translation.Translator
	Player     *playback.Player
}

func newPipeline(p PipelineParams) *pipeline.Pipeline {
	c := pipeline.Components{
		Session:    p.Session,
		Recorder:   p.Recorder,
		Translator: p.Translator,
		Player:     p.Player,
	}
	if p.Config.CopyTranscript {
		c.Clipboard = clipboard.NewManager()
	}
	return pipeline.New(c, p.IO.Out, p.Logger)
}

// Runner runs the pipeline once in the background and shuts the app down
// when it finishes
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerParams holds dependencies for registerRunner
type RunnerParams struct {
	fx.In
	LC         fx.Lifecycle
	Shutdowner fx.Shutdowner
	Runner     *pipeline.Pipeline
	IO         IO
	Logger     *zap.Logger
}

func registerRunner(p RunnerParams) {
	newRunHook(p.Runner, p.Shutdowner, p.IO, p.Logger).register(p.LC)
}

type runHook struct {
	runner     Runner
	shutdowner fx.Shutdowner
	terminal   IO
	logger     *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func newRunHook(runner Runner, shutdowner fx.Shutdowner, terminal IO, log *zap.Logger) *runHook {
	return &runHook{
		runner:     runner,
		shutdowner: shutdowner,
		terminal:   terminal,
		logger:     log.Named("runner"),
		done:       make(chan struct{}),
	}
}

func (h *runHook) register(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// The start context expires after the start timeout; the run
			// outlives it and is cancelled from OnStop instead.
			ctx, cancel := context.WithCancel(context.Background())
			h.cancel = cancel
			go h.run(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if h.cancel == nil {
				return nil
			}
			h.cancel()
			select {
			case <-h.done:
				return nil
			case <-ctx.Done():
				return fmt.Errorf("pipeline did not stop: %w", ctx.Err())
			}
		},
	})
}

func (h *runHook) run(ctx context.Context) {
	defer close(h.done)

	code := h.finish(h.runner.Run(ctx))

	if err := h.shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
		h.logger.Error("Failed to request shutdown", zap.Error(err))
	}
}

// finish reports the outcome of a run and returns the exit code
func (h *runHook) finish(err error) int {
	switch {
	case err == nil:
		h.logger.Info("Run finished")
		return ExitOK
	case errors.Is(err, context.Canceled):
		h.logger.Info("Run interrupted")
		fmt.Fprintln(h.terminal.Out, "Exiting...")
		return ExitOK
	default:
		h.logger.Warn("Run failed", zap.Error(err))
		fmt.Fprintf(h.terminal.ErrOut, "Error: %s\n", strings.TrimSpace(err.Error()))
		return ExitError
	}
}
