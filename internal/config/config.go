// Package config provides configuration loading, defaults, and validation for
// the citation-extraction service.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration object for all binaries (citex CLI and the
// API server).  Every field can be set from YAML or from CITEX_* environment
// variables.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Splitter    SplitterConfig    `mapstructure:"splitter"`
	DateExtract DateExtractConfig `mapstructure:"dateextract"`
	Redact      RedactConfig      `mapstructure:"redact"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Postgres    PostgresConfig    `mapstructure:"postgres"`
	Log         LogConfig         `mapstructure:"log"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxBodyBytes caps the size of an uploaded patent XML document.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// LLMConfig configures the OpenAI-compatible chat-completions endpoint used
// for extraction.  The defaults target a local LM Studio instance.
type LLMConfig struct {
	URL            string        `mapstructure:"url"`
	Model          string        `mapstructure:"model"`
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialDelay   time.Duration `mapstructure:"initial_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SplitterConfig configures the cascading paragraph splitter.
type SplitterConfig struct {
	// Threshold is the target maximum chunk size in characters.  Parts longer
	// than this trigger the split-rule cascade.
	Threshold int `mapstructure:"threshold"`
	// MaxDepth bounds the split recursion.
	MaxDepth int `mapstructure:"max_depth"`
}

// DateExtractConfig configures the publication-date extractor.
type DateExtractConfig struct {
	MinYear int `mapstructure:"min_year"`
	// MaxYear of 0 means the current calendar year.
	MaxYear int `mapstructure:"max_year"`
}

// RedactConfig configures the accession-path text redaction.
type RedactConfig struct {
	// MaxTokenLength is the length above which a whitespace-delimited token is
	// replaced with the FORMULA placeholder.
	MaxTokenLength int `mapstructure:"max_token_length"`
}

// RedisConfig configures the optional LLM response cache.  An empty Addr
// disables caching entirely.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// PostgresConfig configures the optional run-history store.  An empty DSN
// disables run recording.
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
}

// LogConfig mirrors the logging package's configuration shape.
type LogConfig struct {
	Level            string   `mapstructure:"level"`
	Format           string   `mapstructure:"format"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// ApplyDefaults fills in production-ready defaults for every unset field.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// Extraction of a large document holds the response open for the
		// duration of every LLM call it makes.
		cfg.Server.WriteTimeout = 30 * time.Minute
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 64 << 20
	}

	if cfg.LLM.URL == "" {
		cfg.LLM.URL = "http://localhost:1234/v1/chat/completions"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "meta-llama-3.1-8b-instruct"
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 3
	}
	if cfg.LLM.InitialDelay == 0 {
		cfg.LLM.InitialDelay = 1 * time.Second
	}
	if cfg.LLM.RequestTimeout == 0 {
		cfg.LLM.RequestTimeout = 60 * time.Second
	}

	if cfg.Splitter.Threshold == 0 {
		cfg.Splitter.Threshold = 1000
	}
	if cfg.Splitter.MaxDepth == 0 {
		cfg.Splitter.MaxDepth = 32
	}

	if cfg.DateExtract.MinYear == 0 {
		cfg.DateExtract.MinYear = 1900
	}

	if cfg.Redact.MaxTokenLength == 0 {
		cfg.Redact.MaxTokenLength = 20
	}

	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "citex"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 24 * time.Hour
	}

	if cfg.Postgres.MaxConns == 0 {
		cfg.Postgres.MaxConns = 4
	}
	if cfg.Postgres.ConnectTimeout == 0 {
		cfg.Postgres.ConnectTimeout = 10 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stdout"}
	}
	if len(cfg.Log.ErrorOutputPaths) == 0 {
		cfg.Log.ErrorOutputPaths = []string{"stderr"}
	}
}

// Validate checks the configuration for values that would make the service
// misbehave at runtime.  It assumes ApplyDefaults has already run.
func (c *Config) Validate() error {
	if c.LLM.URL == "" {
		return fmt.Errorf("llm.url must not be empty")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must not be empty")
	}
	if c.LLM.MaxRetries < 1 {
		return fmt.Errorf("llm.max_retries must be at least 1, got %d", c.LLM.MaxRetries)
	}
	if c.Splitter.Threshold < 100 {
		return fmt.Errorf("splitter.threshold must be at least 100, got %d", c.Splitter.Threshold)
	}
	if c.Splitter.MaxDepth < 1 {
		return fmt.Errorf("splitter.max_depth must be at least 1, got %d", c.Splitter.MaxDepth)
	}
	if c.DateExtract.MinYear < 1000 {
		return fmt.Errorf("dateextract.min_year must be a 4-digit year, got %d", c.DateExtract.MinYear)
	}
	if c.DateExtract.MaxYear != 0 && c.DateExtract.MaxYear < c.DateExtract.MinYear {
		return fmt.Errorf("dateextract.max_year %d is before min_year %d", c.DateExtract.MaxYear, c.DateExtract.MinYear)
	}
	if c.Redact.MaxTokenLength < 10 {
		return fmt.Errorf("redact.max_token_length must be at least 10, got %d", c.Redact.MaxTokenLength)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}
