package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete docket configuration. It is built once by the CLI
// and handed to the pipeline by pointer.
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Sessions     SessionConfig      `yaml:"sessions" mapstructure:"sessions"`
	Documents    DocumentConfig     `yaml:"documents" mapstructure:"documents"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the oracles (document extraction, eligibility).
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // openai, ollama, "" (disabled)
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"-" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CacheConfig configures caching of oracle extraction results.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// SessionConfig configures where sessions are stored and what they carry.
type SessionConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	LegacyEcho bool   `yaml:"legacy_echo" mapstructure:"legacy_echo"`
}

// DocumentConfig bounds the text sent to the extraction oracle and
// controls how documents given as http(s) URLs are fetched.
type DocumentConfig struct {
	MaxChars      int    `yaml:"max_chars" mapstructure:"max_chars"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	FetchTimeout  int    `yaml:"fetch_timeout" mapstructure:"fetch_timeout"` // seconds
	MaxBytes      int64  `yaml:"max_bytes" mapstructure:"max_bytes"`
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ConcurrencyConfig sizes the extraction worker pool.
type ConcurrencyConfig struct {
	ExtractionWorkers int `yaml:"extraction_workers" mapstructure:"extraction_workers"`
}

// RateLimitingConfig throttles oracle calls per provider. Providers holds
// per-provider overrides of the default rate, keyed by provider name.
type RateLimitingConfig struct {
	RequestsPerSecond float64              `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int                  `yaml:"burst_size" mapstructure:"burst_size"`
	Providers         map[string]RateLimit `yaml:"providers,omitempty" mapstructure:"providers"`
}

// RateLimit is one provider's request rate.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls CLI output.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	base := filepath.Join(home, ".docket")

	return &Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   60,
			MaxTokens: 2000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Sessions: SessionConfig{
			Dir:        filepath.Join(base, "sessions"),
			LegacyEcho: true,
		},
		Documents: DocumentConfig{
			MaxChars:      100_000,
			UserAgent:     "docket/0.1 (+https://github.com/ppiankov/docket)",
			FetchTimeout:  30,
			MaxBytes:      5_000_000,
			RespectRobots: true,
		},
		Concurrency: ConcurrencyConfig{
			ExtractionWorkers: 3,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         3,
		},
	}
}
