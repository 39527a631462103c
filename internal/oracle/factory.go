package oracle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Backend names accepted by New.
const (
	BackendAnthropic = "anthropic"
	BackendGemini    = "gemini"
	BackendGRPC      = "grpc"
)

// Client is an Oracle that owns resources.
type Client interface {
	Oracle
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend     string
	Model       string
	APIKey      string
	Addr        string
	BaseURL     string
	System      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// New builds the backend named by cfg.Backend.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Backend {
	case BackendAnthropic:
		c, err := NewAnthropicClient(AnthropicConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			System:      cfg.System,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendGemini:
		c, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			System:      cfg.System,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendGRPC:
		if cfg.Addr == "" {
			return nil, fmt.Errorf("grpc backend requires an address")
		}
		c, err := NewGRPCClient(cfg.Addr, GRPCOptions{
			System:      cfg.System,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown oracle backend %q", cfg.Backend)
}
