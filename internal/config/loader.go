package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. SUMMARYD_ADDR.
const EnvPrefix = "SUMMARYD_"

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr" env:"ADDR"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format" env:"LOG_FORMAT"`
	// RequestLog is the default per-request log level (off, error, info, debug).
	RequestLog          string `json:"request_log" yaml:"request_log" toml:"request_log" env:"REQUEST_LOG"`
	MaxBodyBytes        int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	MinTextChars        int    `json:"min_text_chars" yaml:"min_text_chars" toml:"min_text_chars" env:"MIN_TEXT_CHARS"`
	MaxInputTokens      *int   `json:"max_input_tokens" yaml:"max_input_tokens" toml:"max_input_tokens" env:"MAX_INPUT_TOKENS"`
	Preload             bool   `json:"preload" yaml:"preload" toml:"preload" env:"PRELOAD"`
	LoadRetryIntervalMS *int   `json:"load_retry_interval_ms" yaml:"load_retry_interval_ms" toml:"load_retry_interval_ms" env:"LOAD_RETRY_INTERVAL_MS"`

	CORS  CORS  `json:"cors" yaml:"cors" toml:"cors" envPrefix:"CORS_"`
	Model Model `json:"model" yaml:"model" toml:"model" envPrefix:"MODEL_"`
}

// CORS configures the opt-in CORS middleware.
type CORS struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled" env:"ENABLED"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins" env:"ORIGINS"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods" env:"METHODS"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers" env:"HEADERS"`
}

// Model selects and configures the model backend.
type Model struct {
	Name                  string `json:"name" yaml:"name" toml:"name" env:"NAME"`
	Backend               string `json:"backend" yaml:"backend" toml:"backend" env:"BACKEND"`
	Path                  string `json:"path" yaml:"path" toml:"path" env:"PATH"`
	ContextSize           int    `json:"context_size" yaml:"context_size" toml:"context_size" env:"CONTEXT_SIZE"`
	Threads               int    `json:"threads" yaml:"threads" toml:"threads" env:"THREADS"`
	ServerURL             string `json:"server_url" yaml:"server_url" toml:"server_url" env:"SERVER_URL"`
	APIKey                string `json:"api_key" yaml:"api_key" toml:"api_key" env:"API_KEY"`
	RemoteModel           string `json:"remote_model" yaml:"remote_model" toml:"remote_model" env:"REMOTE_MODEL"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" yaml:"request_timeout_seconds" toml:"request_timeout_seconds" env:"REQUEST_TIMEOUT_SECONDS"`
	PromptTemplate        string `json:"prompt_template" yaml:"prompt_template" toml:"prompt_template" env:"PROMPT_TEMPLATE"`
}

// Defaults.
const (
	DefaultAddr                = ":8000"
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "json"
	DefaultMaxBodyBytes        = 1 << 20
	DefaultMinTextChars        = 150
	DefaultMaxInputTokens      = 1024
	DefaultLoadRetryIntervalMS = 5000
	DefaultModelName           = "facebook/bart-large-cnn"
	DefaultBackend             = "llama"
	DefaultContextSize         = 2048
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil { return cfg, err }
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil { return cfg, err }
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil { return cfg, err }
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyEnv overlays SUMMARYD_* environment variables onto cfg. Unset
// variables leave the file values alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// Resolve loads path (when non-empty), applies environment overrides, then
// overrides such as command-line flags, then defaults, and validates the
// result.
func Resolve(path string, overrides ...func(*Config)) (Config, error) {
	var cfg Config
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	for _, o := range overrides {
		o(&cfg)
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func intPtr(n int) *int { return &n }

// ApplyDefaults fills unspecified fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" { c.Addr = DefaultAddr }
	if c.LogLevel == "" { c.LogLevel = DefaultLogLevel }
	if c.LogFormat == "" { c.LogFormat = DefaultLogFormat }
	if c.RequestLog == "" { c.RequestLog = "info" }
	if c.MaxBodyBytes <= 0 { c.MaxBodyBytes = DefaultMaxBodyBytes }
	if c.MinTextChars <= 0 { c.MinTextChars = DefaultMinTextChars }
	if c.MaxInputTokens == nil { c.MaxInputTokens = intPtr(DefaultMaxInputTokens) }
	if c.LoadRetryIntervalMS == nil { c.LoadRetryIntervalMS = intPtr(DefaultLoadRetryIntervalMS) }
	if c.CORS.Enabled {
		if len(c.CORS.Origins) == 0 { c.CORS.Origins = []string{"*"} }
		if len(c.CORS.Methods) == 0 { c.CORS.Methods = []string{"GET", "POST", "OPTIONS"} }
		if len(c.CORS.Headers) == 0 { c.CORS.Headers = []string{"Content-Type", "X-Log-Level"} }
	}
	if c.Model.Name == "" { c.Model.Name = DefaultModelName }
	if c.Model.Backend == "" { c.Model.Backend = DefaultBackend }
	c.Model.Backend = strings.ToLower(strings.TrimSpace(c.Model.Backend))
	if c.Model.ContextSize <= 0 { c.Model.ContextSize = DefaultContextSize }
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log_format must be json or console, got %q", c.LogFormat))
	}
	if c.MaxInputTokens != nil && *c.MaxInputTokens < 0 {
		errs = append(errs, errors.New("max_input_tokens must be >= 0"))
	}
	if c.LoadRetryIntervalMS != nil && *c.LoadRetryIntervalMS < 0 {
		errs = append(errs, errors.New("load_retry_interval_ms must be >= 0"))
	}
	if c.Model.Threads < 0 {
		errs = append(errs, errors.New("model.threads must be >= 0"))
	}
	if c.Model.RequestTimeoutSeconds < 0 {
		errs = append(errs, errors.New("model.request_timeout_seconds must be >= 0"))
	}
	// Missing paths or URLs are not checked here: they surface as load
	// failures on first use so the process still comes up.
	switch c.Model.Backend {
	case "llama", "llama-server", "openai":
	default:
		errs = append(errs, fmt.Errorf("unknown model.backend %q", c.Model.Backend))
	}
	return errors.Join(errs...)
}

// RetryInterval is the minimum spacing between load retries.
func (c Config) RetryInterval() time.Duration {
	if c.LoadRetryIntervalMS == nil {
		return DefaultLoadRetryIntervalMS * time.Millisecond
	}
	return time.Duration(*c.LoadRetryIntervalMS) * time.Millisecond
}

// InputTokenLimit is the truncation limit for documents; 0 disables it.
func (c Config) InputTokenLimit() int {
	if c.MaxInputTokens == nil {
		return DefaultMaxInputTokens
	}
	return *c.MaxInputTokens
}

// RequestTimeout is the per-call timeout for remote backends.
func (m Model) RequestTimeout() time.Duration {
	return time.Duration(m.RequestTimeoutSeconds) * time.Second
}
