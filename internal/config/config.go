// Package config handles configuration loading and validation for the
// collapse, sweep and inspection tools.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/t13-mirror/internal/collapse"
	"github.com/danielpatrickdp/t13-mirror/internal/match"
	"github.com/danielpatrickdp/t13-mirror/internal/oracle"
	"github.com/danielpatrickdp/t13-mirror/internal/sweep"
)

// #region types

// Config holds every tool setting. Command flags override it.
type Config struct {
	// Collapse configures the deterministic transform.
	Collapse CollapseConfig `toml:"collapse" json:"collapse" yaml:"collapse"`

	// Sweep configures the probe loop.
	Sweep SweepConfig `toml:"sweep" json:"sweep" yaml:"sweep"`

	// Oracle selects the reply backend.
	Oracle OracleConfig `toml:"oracle" json:"oracle" yaml:"oracle"`

	// Storage locates the cycle logs and the run database.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Logging configures operational logs.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Batch configures batch evaluation.
	Batch BatchConfig `toml:"batch" json:"batch" yaml:"batch"`
}

// CollapseConfig mirrors collapse.Options.
type CollapseConfig struct {
	Dimension  int    `toml:"dimension" json:"dimension" yaml:"dimension"`
	Base       int    `toml:"base" json:"base" yaml:"base"`
	TextMode   string `toml:"text_mode" json:"text_mode" yaml:"text_mode"`
	LabelSet   string `toml:"label_set" json:"label_set" yaml:"label_set"`
	StartIndex int    `toml:"start_index" json:"start_index" yaml:"start_index"`
}

// SweepConfig holds the loop budgets and what the prompt shows.
type SweepConfig struct {
	// Name is the AI name used in the prompt.
	Name          string   `toml:"name" json:"name" yaml:"name"`
	Seeds         []string `toml:"seeds" json:"seeds" yaml:"seeds"`
	MaxIterations int      `toml:"max_iterations" json:"max_iterations" yaml:"max_iterations"`
	// MaxMinutes is the wall-clock budget per seed.
	MaxMinutes   float64 `toml:"max_minutes" json:"max_minutes" yaml:"max_minutes"`
	DelaySeconds float64 `toml:"delay_seconds" json:"delay_seconds" yaml:"delay_seconds"`
	// PauseSeconds separates the blind run from the calibration run.
	PauseSeconds float64 `toml:"pause_seconds" json:"pause_seconds" yaml:"pause_seconds"`

	// Phrases overrides the default phrase sets when non-nil.
	Phrases *match.PhraseSets `toml:"phrases,omitempty" json:"phrases,omitempty" yaml:"phrases,omitempty"`
}

// OracleConfig selects and tunes the backend.
type OracleConfig struct {
	Backend        string  `toml:"backend" json:"backend" yaml:"backend"`
	Model          string  `toml:"model" json:"model" yaml:"model"`
	Addr           string  `toml:"addr" json:"addr" yaml:"addr"`
	BaseURL        string  `toml:"base_url" json:"base_url" yaml:"base_url"`
	System         string  `toml:"system" json:"system" yaml:"system"`
	MaxTokens      int     `toml:"max_tokens" json:"max_tokens" yaml:"max_tokens"`
	Temperature    float64 `toml:"temperature" json:"temperature" yaml:"temperature"`
	TimeoutSeconds float64 `toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`

	// APIKey is normally supplied through the environment.
	APIKey string `toml:"api_key" json:"-" yaml:"api_key"`
}

// StorageConfig locates persisted data.
type StorageConfig struct {
	DBPath string `toml:"db_path" json:"db_path" yaml:"db_path"`
	LogDir string `toml:"log_dir" json:"log_dir" yaml:"log_dir"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Verbose bool `toml:"verbose" json:"verbose" yaml:"verbose"`
	JSON    bool `toml:"json" json:"json" yaml:"json"`
}

// BatchConfig configures batch evaluation.
type BatchConfig struct {
	Concurrency int `toml:"concurrency" json:"concurrency" yaml:"concurrency"`
}

// #endregion types

// #region defaults

const defaultModel = "claude-3-5-sonnet-20241022"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Collapse: CollapseConfig{
			Dimension:  13,
			Base:       12,
			TextMode:   string(collapse.ModeConcat),
			LabelSet:   string(collapse.LabelsUniversal),
			StartIndex: 1,
		},
		Sweep: SweepConfig{
			Name:          "Claude",
			Seeds:         append([]string(nil), sweep.DefaultSeeds...),
			MaxIterations: 24,
			MaxMinutes:    20,
			DelaySeconds:  2,
			PauseSeconds:  10,
		},
		Oracle: OracleConfig{
			Backend:        oracle.BackendAnthropic,
			Model:          defaultModel,
			System:         oracle.DefaultSystemPrompt,
			MaxTokens:      800,
			Temperature:    0.5,
			TimeoutSeconds: 120,
		},
		Storage: StorageConfig{
			DBPath: "t13-mirror.db",
			LogDir: "logs",
		},
	}
}

// #endregion defaults

// #region load

// Load reads path into a copy of the defaults, choosing the decoder by
// extension. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
	return cfg, nil
}

// Resolve loads path, applies environment overrides and validates.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides. The API key is
// read from the variable matching the selected backend. Switching backend
// drops the default Anthropic model so the new backend picks its own.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("T13_ORACLE"); v != "" {
		c.SetBackend(v)
	}
	if v := os.Getenv("T13_MODEL"); v != "" {
		c.Oracle.Model = v
	}
	if v := os.Getenv("T13_ORACLE_ADDR"); v != "" {
		c.Oracle.Addr = v
	}
	c.applyAPIKey()
	if v := os.Getenv("T13_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("T13_LOG_DIR"); v != "" {
		c.Storage.LogDir = v
	}
}

// SetBackend switches the oracle backend. The default Anthropic model is
// dropped when leaving Anthropic and the API key is re-read for the new one.
func (c *Config) SetBackend(backend string) {
	if backend == c.Oracle.Backend {
		return
	}
	c.Oracle.Backend = backend
	if c.Oracle.Model == defaultModel {
		c.Oracle.Model = ""
	}
	c.Oracle.APIKey = ""
	c.applyAPIKey()
}

func (c *Config) applyAPIKey() {
	switch c.Oracle.Backend {
	case oracle.BackendAnthropic:
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			c.Oracle.APIKey = v
		}
	case oracle.BackendGemini:
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			c.Oracle.APIKey = v
		}
	}
}

// #endregion load

// #region validate

// ValidationError names one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Collapse.Dimension > collapse.MaxDimension {
		add("collapse.dimension", "must be <= %d", collapse.MaxDimension)
	}
	if _, err := collapse.ParseTextMode(c.Collapse.TextMode); err != nil {
		add("collapse.text_mode", "unknown mode %q", c.Collapse.TextMode)
	}
	if _, err := collapse.ParseLabelSet(c.Collapse.LabelSet); err != nil {
		add("collapse.label_set", "unknown label set %q", c.Collapse.LabelSet)
	}

	if c.Sweep.Name == "" {
		add("sweep.name", "must not be empty")
	}
	if c.Sweep.MaxIterations < 1 {
		add("sweep.max_iterations", "must be >= 1, got %d", c.Sweep.MaxIterations)
	}
	if c.Sweep.MaxMinutes <= 0 {
		add("sweep.max_minutes", "must be > 0, got %v", c.Sweep.MaxMinutes)
	}
	if c.Sweep.DelaySeconds < 0 {
		add("sweep.delay_seconds", "must be >= 0, got %v", c.Sweep.DelaySeconds)
	}
	if c.Sweep.PauseSeconds < 0 {
		add("sweep.pause_seconds", "must be >= 0, got %v", c.Sweep.PauseSeconds)
	}

	switch c.Oracle.Backend {
	case oracle.BackendAnthropic, oracle.BackendGemini:
	case oracle.BackendGRPC:
		if c.Oracle.Addr == "" {
			add("oracle.addr", "required for the grpc backend")
		}
	default:
		add("oracle.backend", "unknown backend %q", c.Oracle.Backend)
	}
	if c.Oracle.MaxTokens < 1 {
		add("oracle.max_tokens", "must be >= 1, got %d", c.Oracle.MaxTokens)
	}
	if c.Oracle.Temperature < 0 || c.Oracle.Temperature > 2 {
		add("oracle.temperature", "must be within [0, 2], got %v", c.Oracle.Temperature)
	}

	if c.Batch.Concurrency < 0 {
		add("batch.concurrency", "must be >= 0, got %d", c.Batch.Concurrency)
	}
	return errors.Join(errs...)
}

// #endregion validate

// #region conversions

// CollapseOptions converts the collapse section.
func (c *Config) CollapseOptions() (collapse.Options, error) {
	mode, err := collapse.ParseTextMode(c.Collapse.TextMode)
	if err != nil {
		return collapse.Options{}, err
	}
	set, err := collapse.ParseLabelSet(c.Collapse.LabelSet)
	if err != nil {
		return collapse.Options{}, err
	}
	return collapse.Options{
		Dimension:  c.Collapse.Dimension,
		Base:       c.Collapse.Base,
		TextMode:   mode,
		StartIndex: c.Collapse.StartIndex,
		LabelSet:   set,
	}, nil
}

// SweepConfig builds the controller configuration for condition.
func (c *Config) SweepConfig(condition string) (sweep.Config, error) {
	opts, err := c.CollapseOptions()
	if err != nil {
		return sweep.Config{}, err
	}
	phrases := match.DefaultPhraseSets()
	if c.Sweep.Phrases != nil {
		phrases = *c.Sweep.Phrases
	}
	cfg := sweep.Config{
		Name:          c.Sweep.Name,
		MaxIterations: c.Sweep.MaxIterations,
		MaxDuration:   seconds(c.Sweep.MaxMinutes * 60),
		Delay:         seconds(c.Sweep.DelaySeconds),
		Collapse:      opts,
		Phrases:       phrases,
	}
	return cfg.ForCondition(condition), nil
}

// Pause is the wait between the blind and calibration runs.
func (c *Config) Pause() time.Duration {
	return seconds(c.Sweep.PauseSeconds)
}

// OracleConfig converts the oracle section.
func (c *Config) OracleConfig() oracle.Config {
	return oracle.Config{
		Backend:     c.Oracle.Backend,
		Model:       c.Oracle.Model,
		APIKey:      c.Oracle.APIKey,
		Addr:        c.Oracle.Addr,
		BaseURL:     c.Oracle.BaseURL,
		System:      c.Oracle.System,
		MaxTokens:   c.Oracle.MaxTokens,
		Temperature: c.Oracle.Temperature,
		Timeout:     seconds(c.Oracle.TimeoutSeconds),
	}
}

// LogPath is the cycle log file for condition.
func (c *Config) LogPath(condition string) string {
	return filepath.Join(c.Storage.LogDir, condition+"_log.jsonl")
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// #endregion conversions
