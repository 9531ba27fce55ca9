package translation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/yok-tottii/EzS2ST/internal/audio"
)

// SpeechSampleRate is the rate of the raw PCM returned by the speech endpoint
const SpeechSampleRate = 24000

// OpenAIConfig holds the OpenAI backend settings
type OpenAIConfig struct {
	APIKey           string
	BaseURL          string // empty means the public API
	TranslationModel string
	SpeechModel      string
	Voice            string
	VerifyModels     bool
}

// NewOpenAIClient creates and configures a new OpenAI client
func NewOpenAIClient(cfg OpenAIConfig) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is not configured")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return openai.NewClientWithConfig(clientConfig), nil
}

// OpenAIModel translates speech with the audio translation endpoint and
// voices the English text with the speech endpoint
type OpenAIModel struct {
	client *openai.Client
	config OpenAIConfig
	logger *zap.Logger
}

// NewOpenAIModel creates a model backed by client
func NewOpenAIModel(client *openai.Client, cfg OpenAIConfig, logger *zap.Logger) *OpenAIModel {
	return &OpenAIModel{
		client: client,
		config: cfg,
		logger: logger.Named("openai_model"),
	}
}

// Verify checks that the configured models exist
func (m *OpenAIModel) Verify(ctx context.Context) error {
	for _, id := range []string{m.config.TranslationModel, m.config.SpeechModel} {
		model, err := m.client.GetModel(ctx, id)
		if err != nil {
			return fmt.Errorf("model %q is not available: %w", id, err)
		}
		m.logger.Debug("Model available", zap.String("model", model.ID), zap.String("ownedBy", model.OwnedBy))
	}
	return nil
}

// Generate translates the speech in inputs into English speech. The batch
// always holds a single output; an empty transcript yields no output.
func (m *OpenAIModel) Generate(ctx context.Context, inputs *Inputs, targetLang string) (*Generation, error) {
	if err := checkLanguage(targetLang); err != nil {
		return nil, err
	}

	resp, err := m.client.CreateTranslation(ctx, openai.AudioRequest{
		Model:    m.config.TranslationModel,
		FilePath: "speech.wav",
		Reader:   bytes.NewReader(inputs.WAV),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		m.logger.Warn("Failed to get translation from OpenAI", zap.Error(err))
		return nil, fmt.Errorf("audio translation request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	m.logger.Debug("Received translation", zap.Int("textLength", len(text)))
	if text == "" {
		m.logger.Warn("OpenAI returned an empty translation")
		return &Generation{SampleRate: SpeechSampleRate}, nil
	}

	speech, err := m.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(m.config.SpeechModel),
		Input:          text,
		Voice:          openai.SpeechVoice(m.config.Voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		m.logger.Warn("Failed to synthesize speech", zap.Error(err))
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer speech.Close()

	data, err := io.ReadAll(speech)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech audio: %w", err)
	}

	samples := audio.PCM16ToFloat32(audio.LEToPCM16(data))
	m.logger.Debug("Received speech", zap.Int("samples", len(samples)))

	return &Generation{
		Audio:      [][]float32{samples},
		SampleRate: SpeechSampleRate,
		Text:       text,
	}, nil
}

// OpenAIModelFactory returns a ModelFactory that builds an OpenAIModel and,
// if configured, verifies its models
func OpenAIModelFactory(cfg OpenAIConfig, logger *zap.Logger) ModelFactory {
	return func(ctx context.Context) (Model, error) {
		client, err := NewOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}

		model := NewOpenAIModel(client, cfg, logger)
		if cfg.VerifyModels {
			if err := model.Verify(ctx); err != nil {
				return nil, err
			}
		}

		return model, nil
	}
}
