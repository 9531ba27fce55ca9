package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const filePrefix = "ezs2st-"

// Config holds logger configuration
type Config struct {
	LogDir        string
	Level         string // debug, info, warn, error
	RetentionDays int
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return Config{
		LogDir:        filepath.Join(homeDir, ".local", "state", "ezs2st", "logs"),
		Level:         "info",
		RetentionDays: 7,
	}
}

// ParseLevel maps a config level name to a zap level. Unknown names fall back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// New creates a zap logger writing JSON lines to a daily log file. Errors are
// also echoed to stderr; stdout is left to the user-facing messages.
func New(config Config) (*zap.Logger, error) {
	file, err := newDailyFile(config.LogDir, config.RetentionDays)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		file,
		zap.NewAtomicLevelAt(ParseLevel(config.Level)),
	)

	consoleConfig := zap.NewDevelopmentEncoderConfig()
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleConfig),
		zapcore.Lock(os.Stderr),
		zap.ErrorLevel,
	)

	return zap.New(zapcore.NewTee(fileCore, consoleCore)), nil
}

// dailyFile is a zapcore.WriteSyncer that switches to a new file every day
// and removes files older than the retention period
type dailyFile struct {
	mu            sync.Mutex
	dir           string
	retentionDays int
	file          *os.File
	currentDay    string
	now           func() time.Time
}

func newDailyFile(dir string, retentionDays int) (*dailyFile, error) {
	f := &dailyFile{
		dir:           dir,
		retentionDays: retentionDays,
		now:           time.Now,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.rotate(); err != nil {
		return nil, err
	}
	return f, nil
}

// FileName returns the log file name for the given day
func FileName(day time.Time) string {
	return fmt.Sprintf("%s%s.log", filePrefix, day.Format("20060102"))
}

// rotate opens today's file if needed. Caller holds mu.
func (f *dailyFile) rotate() error {
	today := f.now().Format("20060102")
	if f.currentDay == today && f.file != nil {
		return nil
	}

	if f.file != nil {
		f.file.Close()
		f.file = nil
	}

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(f.dir, FileName(f.now()))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	f.file = file
	f.currentDay = today

	// Cleanup failures never block logging
	_ = f.cleanOldLogs()

	return nil
}

// cleanOldLogs deletes log files older than retentionDays
func (f *dailyFile) cleanOldLogs() error {
	if f.retentionDays <= 0 {
		return nil
	}
	cutoff := f.now().AddDate(0, 0, -f.retentionDays)

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(f.dir, entry.Name()))
		}
	}

	return nil
}

func (f *dailyFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.rotate(); err != nil {
		// Can't log this error since logging is failing
		fmt.Fprintf(os.Stderr, "Failed to rotate log: %v\n", err)
		if f.file == nil {
			return 0, err
		}
	}
	return f.file.Write(p)
}

func (f *dailyFile) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	return f.file.Sync()
}

// Close closes the current log file
func (f *dailyFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
