package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/text/language"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_KEY: API key for the LLM provider (required)
// - LLM_API_URL: API endpoint URL (default: https://openrouter.ai/api/v1)
// - LLM_MODEL: Model name to use (default: openai/gpt-3.5-turbo)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 8000)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.7)
// - LLM_TIMEOUT: Request timeout in seconds (default: 30)
// - LLM_SITE_URL: Site URL for HTTP referer header (optional)
// - LLM_APP_NAME: Application name for X-Title header (optional)
//
// Translation Configuration:
// - TARGET_LANGUAGE: BCP 47 tag of the translation target (default: zh)
//
// Pipeline Configuration:
// - STAGE_SIZE: Cues per processing window (default: 100)
// - BATCH_SIZE: Max items per translation request (default: 20)
// - CONTEXT_SIZE: Neighboring cue texts attached per item (default: 3)
// - MIN_RESEGMENT_CUES: Smallest track worth re-segmenting (default: 5)
// - RETENTION_RATIO: Minimum unit-count share a sentence mapping must keep (default: 0.7)
// - MIN_SPAN_SECONDS: Minimum merged-cue duration (default: 0.2)
//
// Playback Configuration:
// - TICK_INTERVAL_MS: Synchronizer poll cadence (default: 140)
//
// Cache Configuration:
// - CACHE_ENABLED: Persist finished translations (default: true)
// - CACHE_PATH: SQLite database path (default: /app/data/translations.db)
// - CACHE_TTL_HOURS: Row lifetime before the sweep removes it (default: 720)
// - CACHE_SWEEP_CRON: Sweep schedule (default: "0 0 * * *")

type Config struct {
	// LLM Configuration
	LLM LLMConfig `json:"llm"`

	// Translate Configuration
	Translate TranslateConfig `json:"translate"`

	// Pipeline Configuration
	Pipeline PipelineConfig `json:"pipeline"`

	// Playback Configuration
	Sync SyncConfig `json:"sync"`

	// Cache Configuration
	Cache CacheConfig `json:"cache"`
}

// LLMConfig holds the configuration for LLM client
// Supports any LLM provider (OpenRouter, OpenAI, Anthropic, etc.)
type LLMConfig struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
	SiteURL     string  `json:"site_url"`
	AppName     string  `json:"app_name"`
}

type TranslateConfig struct {
	TargetLanguage language.Tag `json:"target_language"`
}

// PipelineConfig holds the tunables of the staged translation pipeline
type PipelineConfig struct {
	StageSize        int     `json:"stage_size"`
	BatchSize        int     `json:"batch_size"`
	ContextSize      int     `json:"context_size"`
	MinResegmentCues int     `json:"min_resegment_cues"`
	RetentionRatio   float64 `json:"retention_ratio"`
	MinSpanSeconds   float64 `json:"min_span_seconds"`
}

// SyncConfig holds the playback synchronizer configuration
type SyncConfig struct {
	TickIntervalMs int `json:"tick_interval_ms"`
}

// CacheConfig holds the translation cache configuration
type CacheConfig struct {
	Enabled       bool   `json:"enabled"`
	Path          string `json:"path"`
	TTLHours      int    `json:"ttl_hours"`
	SweepCronExpr string `json:"sweep_cron_expr"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	targetLang, err := language.Parse(getEnvString("TARGET_LANGUAGE", "zh"))
	if err != nil {
		return nil, fmt.Errorf("invalid TARGET_LANGUAGE: %w", err)
	}

	config := &Config{
		LLM: LLMConfig{
			APIKey:      getEnvString("LLM_API_KEY", ""),
			APIURL:      getEnvString("LLM_API_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnvString("LLM_MODEL", "openai/gpt-3.5-turbo"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 8000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
			Timeout:     getEnvInt("LLM_TIMEOUT", 30),
			SiteURL:     getEnvString("LLM_SITE_URL", ""),
			AppName:     getEnvString("LLM_APP_NAME", ""),
		},
		Translate: TranslateConfig{
			TargetLanguage: targetLang,
		},
		Pipeline: PipelineConfig{
			StageSize:        getEnvInt("STAGE_SIZE", 100),
			BatchSize:        getEnvInt("BATCH_SIZE", 20),
			ContextSize:      getEnvInt("CONTEXT_SIZE", 3),
			MinResegmentCues: getEnvInt("MIN_RESEGMENT_CUES", 5),
			RetentionRatio:   getEnvFloat("RETENTION_RATIO", 0.7),
			MinSpanSeconds:   getEnvFloat("MIN_SPAN_SECONDS", 0.2),
		},
		Sync: SyncConfig{
			TickIntervalMs: getEnvInt("TICK_INTERVAL_MS", 140),
		},
		Cache: CacheConfig{
			Enabled:       getEnvBool("CACHE_ENABLED", true),
			Path:          getEnvString("CACHE_PATH", "/app/data/translations.db"),
			TTLHours:      getEnvInt("CACHE_TTL_HOURS", 720),
			SweepCronExpr: getEnvString("CACHE_SWEEP_CRON", "0 0 * * *"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Pipeline.RetentionRatio <= 0 || c.Pipeline.RetentionRatio > 1 {
		return fmt.Errorf("RETENTION_RATIO must be in (0, 1]")
	}
	if c.Sync.TickIntervalMs < 1 {
		return fmt.Errorf("TICK_INTERVAL_MS must be greater than 0")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
