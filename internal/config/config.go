package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv overrides openai.api_key when set
const APIKeyEnv = "OPENAI_API_KEY"

// ErrMissingAPIKey is returned by Validate when no API key is configured
var ErrMissingAPIKey = errors.New("OpenAI API key is not configured (set openai.api_key or " + APIKeyEnv + ")")

// Config holds application configuration
type Config struct {
	LogLevel       string          `yaml:"log_level"`
	LogDir         string          `yaml:"log_dir"`
	Audio          AudioConfig     `yaml:"audio"`
	Recording      RecordingConfig `yaml:"recording"`
	OpenAI         OpenAIConfig    `yaml:"openai"`
	CopyTranscript bool            `yaml:"copy_transcript"`
}

// AudioConfig selects devices and buffering. Sample rate and channel count are fixed.
type AudioConfig struct {
	InputDeviceID   int    `yaml:"input_device_id"`  // -1 means system default
	OutputDeviceID  int    `yaml:"output_device_id"` // -1 means system default
	FramesPerBuffer int    `yaml:"frames_per_buffer"`
	Latency         string `yaml:"latency"` // "low" or "high"
}

// RecordingConfig controls when a recording stops
type RecordingConfig struct {
	MaxDuration time.Duration `yaml:"max_duration"` // 0 disables the limit
	StopHotkey  HotkeyConfig  `yaml:"stop_hotkey"`
}

// HotkeyConfig holds the optional global stop hotkey
type HotkeyConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Modifiers []string `yaml:"modifiers"` // e.g. ["ctrl", "shift"]
	Key       string   `yaml:"key"`       // e.g. "S"
}

// OpenAIConfig holds the translation backend settings
type OpenAIConfig struct {
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	TranslationModel string `yaml:"translation_model"`
	SpeechModel      string `yaml:"speech_model"`
	Voice            string `yaml:"voice"`
	VerifyModels     bool   `yaml:"verify_models"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		LogDir:   "", // empty means logger default
		Audio: AudioConfig{
			InputDeviceID:   -1,
			OutputDeviceID:  -1,
			FramesPerBuffer: 1024,
			Latency:         "high",
		},
		Recording: RecordingConfig{
			StopHotkey: HotkeyConfig{
				Enabled:   false,
				Modifiers: []string{"ctrl", "shift"},
				Key:       "S",
			},
		},
		OpenAI: OpenAIConfig{
			TranslationModel: "whisper-1",
			SpeechModel:      "tts-1",
			Voice:            "alloy",
			VerifyModels:     true,
		},
		CopyTranscript: false,
	}
}

// Load loads configuration from the specified path. A missing file yields the
// defaults. The API key environment variable takes precedence over the file.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		config.OpenAI.APIKey = key
	}

	return config, nil
}

// Save saves configuration to the specified path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold an API key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ezs2st", "config.yaml")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "ezs2st", "config.yaml")
}

// ExpandPath expands ~ to home directory in file paths
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// Validate validates all configuration fields
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn or error)", c.LogLevel)
	}

	if c.Audio.InputDeviceID < -1 {
		return fmt.Errorf("invalid audio.input_device_id: %d", c.Audio.InputDeviceID)
	}
	if c.Audio.OutputDeviceID < -1 {
		return fmt.Errorf("invalid audio.output_device_id: %d", c.Audio.OutputDeviceID)
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > 16384 {
		return fmt.Errorf("invalid audio.frames_per_buffer: %d (must be between 1 and 16384)", c.Audio.FramesPerBuffer)
	}
	if c.Audio.Latency != "low" && c.Audio.Latency != "high" {
		return fmt.Errorf("invalid audio.latency: %s (must be 'low' or 'high')", c.Audio.Latency)
	}

	if c.Recording.MaxDuration < 0 || c.Recording.MaxDuration > 10*time.Minute {
		return fmt.Errorf("invalid recording.max_duration: %s (must be between 0 and 10m)", c.Recording.MaxDuration)
	}
	if c.Recording.StopHotkey.Enabled && c.Recording.StopHotkey.Key == "" {
		return fmt.Errorf("recording.stop_hotkey.key cannot be empty when the hotkey is enabled")
	}

	if c.OpenAI.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.OpenAI.TranslationModel == "" || c.OpenAI.SpeechModel == "" {
		return fmt.Errorf("openai.translation_model and openai.speech_model cannot be empty")
	}
	if c.OpenAI.Voice == "" {
		return fmt.Errorf("openai.voice cannot be empty")
	}

	return nil
}
