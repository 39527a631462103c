package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	System      string
	MaxTokens   int
	Temperature float64
}

// GeminiClient generates replies with Google's Gemini API.
type GeminiClient struct {
	client      *genai.Client
	model       string
	system      string
	maxTokens   int32
	temperature float32
	logger      *zap.Logger
}

// NewGeminiClient creates a Gemini-backed oracle.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 800
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		system:      cfg.System,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
		logger:      logger,
	}, nil
}

// Generate sends prompt as a single user turn.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	temperature := g.temperature
	conf := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.maxTokens,
	}
	if g.system != "" {
		conf.SystemInstruction = genai.NewContentFromText(g.system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), conf)
	if err != nil {
		return "", Wrap("gemini", fmt.Errorf("generate content: %w", err))
	}
	text := resp.Text()
	if text == "" {
		return "", Wrap("gemini", errors.New("no text content returned"))
	}

	g.logger.Debug("gemini reply",
		zap.String("model", g.model),
		zap.Int("reply_len", len(text)),
		zap.Duration("elapsed", time.Since(start)))
	return text, nil
}

// Close is a no-op; the genai client has nothing to release.
func (g *GeminiClient) Close() error { return nil }
