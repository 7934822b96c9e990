package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	apperrors "persona-agent/errors"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	WebPort     int    `mapstructure:"WEB_PORT"`
	ContentPath string `mapstructure:"CONTENT_PATH"`

	ConfidenceThreshold   float64 `mapstructure:"CONFIDENCE_THRESHOLD"`
	RemoteFallbackEnabled bool    `mapstructure:"REMOTE_FALLBACK_ENABLED"`
	RemoteAPIKey          string  `mapstructure:"REMOTE_API_KEY"`
	RemoteBaseURL         string  `mapstructure:"REMOTE_BASE_URL"`
	RemoteModel           string  `mapstructure:"REMOTE_MODEL"`
	RemoteMaxRetries      int     `mapstructure:"REMOTE_MAX_RETRIES"`
	RemoteHistoryTurns    int     `mapstructure:"REMOTE_HISTORY_TURNS"`
	RemoteMaxChars        int     `mapstructure:"REMOTE_MAX_CHARS"`
	RemoteTemperature     float64 `mapstructure:"REMOTE_TEMPERATURE"`
	RetryDelaySeconds     int     `mapstructure:"RETRY_DELAY_SECONDS"`
	LLMRequestTimeoutSecs int     `mapstructure:"LLM_REQUEST_TIMEOUT"`

	TriggerBonus        float64 `mapstructure:"SCORE_TRIGGER_BONUS"`
	PartialTriggerBonus float64 `mapstructure:"SCORE_PARTIAL_TRIGGER_BONUS"`
	KeywordBonus        float64 `mapstructure:"SCORE_KEYWORD_BONUS"`
	ContextBonus        float64 `mapstructure:"SCORE_CONTEXT_BONUS"`
	SimilarityWeight    float64 `mapstructure:"SCORE_SIMILARITY_WEIGHT"`
	FlowBonus           float64 `mapstructure:"SCORE_FLOW_BONUS"`
	RecencyPenalty      float64 `mapstructure:"SCORE_RECENCY_PENALTY"`
	DefaultDamping      float64 `mapstructure:"SCORE_DEFAULT_DAMPING"`
	RecencyWindow       int     `mapstructure:"RECENCY_WINDOW"`
	FuzzyThreshold      float64 `mapstructure:"FUZZY_THRESHOLD"`
	SentimentThreshold  float64 `mapstructure:"SENTIMENT_THRESHOLD"`
	SimilarityCacheSize int     `mapstructure:"SIMILARITY_CACHE_SIZE"`

	SessionStore       string `mapstructure:"SESSION_STORE"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int    `mapstructure:"REDIS_DB"`
	CleanupEnabled     bool   `mapstructure:"CLEANUP_ENABLED"`
	CleanupHours       int    `mapstructure:"CLEANUP_INTERVAL"`
	RetentionAgeHours  int    `mapstructure:"SESSION_RETENTION_AGE"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_MESSAGES_PER_MIN"`
	RateLimitBurstSize int    `mapstructure:"RATE_LIMIT_BURST_SIZE"`

	// Derived from the *Seconds/*Hours fields by Load.
	RetryDelay          time.Duration `mapstructure:"-"`
	LLMRequestTimeout   time.Duration `mapstructure:"-"`
	CleanupInterval     time.Duration `mapstructure:"-"`
	SessionRetentionAge time.Duration `mapstructure:"-"`
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WEB_PORT", 8080)
	v.SetDefault("CONTENT_PATH", "")

	v.SetDefault("CONFIDENCE_THRESHOLD", 5.0)
	v.SetDefault("REMOTE_FALLBACK_ENABLED", false)
	v.SetDefault("REMOTE_API_KEY", "")
	v.SetDefault("REMOTE_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("REMOTE_MODEL", "gpt-4o-mini")
	v.SetDefault("REMOTE_MAX_RETRIES", 2)
	v.SetDefault("REMOTE_HISTORY_TURNS", 8)
	v.SetDefault("REMOTE_MAX_CHARS", 600)
	v.SetDefault("REMOTE_TEMPERATURE", 0.8)
	v.SetDefault("RETRY_DELAY_SECONDS", 1)
	v.SetDefault("LLM_REQUEST_TIMEOUT", 20)

	v.SetDefault("SCORE_TRIGGER_BONUS", 20.0)
	v.SetDefault("SCORE_PARTIAL_TRIGGER_BONUS", 10.0)
	v.SetDefault("SCORE_KEYWORD_BONUS", 7.0)
	v.SetDefault("SCORE_CONTEXT_BONUS", 5.0)
	v.SetDefault("SCORE_SIMILARITY_WEIGHT", 15.0)
	v.SetDefault("SCORE_FLOW_BONUS", 6.0)
	v.SetDefault("SCORE_RECENCY_PENALTY", 0.7)
	v.SetDefault("SCORE_DEFAULT_DAMPING", 0.1)
	v.SetDefault("RECENCY_WINDOW", 3)
	v.SetDefault("FUZZY_THRESHOLD", 0.7)
	v.SetDefault("SENTIMENT_THRESHOLD", 0.2)
	v.SetDefault("SIMILARITY_CACHE_SIZE", 512)

	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CLEANUP_ENABLED", true)
	v.SetDefault("CLEANUP_INTERVAL", 1)
	v.SetDefault("SESSION_RETENTION_AGE", 24)
	v.SetDefault("RATE_LIMIT_MESSAGES_PER_MIN", 30)
	v.SetDefault("RATE_LIMIT_BURST_SIZE", 10)
}

func Load(logger *zap.Logger) *Config {
	var config Config
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")        // For running locally
	v.AddConfigPath("../")      // For running from docker subdir
	v.AddConfigPath("./config") // Common config folder
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	config.normalize()
	return &config
}

func (c *Config) normalize() {
	c.RemoteAPIKey = strings.TrimSpace(c.RemoteAPIKey)
	c.SessionStore = strings.ToLower(strings.TrimSpace(c.SessionStore))
	if c.SessionStore == "" {
		c.SessionStore = SessionStoreMemory
	}
	if c.RemoteMaxRetries < 0 {
		c.RemoteMaxRetries = 0
	}
	if c.RecencyWindow <= 0 {
		c.RecencyWindow = 3
	}

	// Convert seconds/hours to proper time.Duration
	c.RetryDelay = time.Duration(c.RetryDelaySeconds) * time.Second
	c.LLMRequestTimeout = time.Duration(c.LLMRequestTimeoutSecs) * time.Second
	c.CleanupInterval = time.Duration(c.CleanupHours) * time.Hour
	c.SessionRetentionAge = time.Duration(c.RetentionAgeHours) * time.Hour
}

// RemoteConfigured reports whether the remote generator may be used at all:
// the fallback must be enabled and a credential must be present.
func (c *Config) RemoteConfigured() bool {
	return c.RemoteFallbackEnabled && c.RemoteAPIKey != ""
}

// Validate checks values that would otherwise make scoring or fallback
// behave nonsensically. A failing config must stop the process.
func (c *Config) Validate() error {
	if math.IsNaN(c.ConfidenceThreshold) || math.IsInf(c.ConfidenceThreshold, 0) || c.ConfidenceThreshold < 0 {
		return apperrors.WrapErrorf(apperrors.ErrInvalidConfig, "confidence threshold %v must be a finite non-negative number", c.ConfidenceThreshold)
	}
	for name, factor := range map[string]float64{
		"SCORE_RECENCY_PENALTY": c.RecencyPenalty,
		"SCORE_DEFAULT_DAMPING": c.DefaultDamping,
	} {
		if factor <= 0 || factor > 1 {
			return apperrors.WrapErrorf(apperrors.ErrInvalidConfig, "%s must be in (0, 1], got %v", name, factor)
		}
	}
	for name, bonus := range map[string]float64{
		"SCORE_TRIGGER_BONUS":         c.TriggerBonus,
		"SCORE_PARTIAL_TRIGGER_BONUS": c.PartialTriggerBonus,
		"SCORE_KEYWORD_BONUS":         c.KeywordBonus,
		"SCORE_CONTEXT_BONUS":         c.ContextBonus,
		"SCORE_SIMILARITY_WEIGHT":     c.SimilarityWeight,
		"SCORE_FLOW_BONUS":            c.FlowBonus,
	} {
		if bonus < 0 {
			return apperrors.WrapErrorf(apperrors.ErrInvalidConfig, "%s must not be negative, got %v", name, bonus)
		}
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return apperrors.WrapErrorf(apperrors.ErrInvalidConfig, "FUZZY_THRESHOLD must be in (0, 1], got %v", c.FuzzyThreshold)
	}
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return apperrors.WrapErrorf(apperrors.ErrInvalidConfig, "unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.RemoteConfigured() && c.LLMRequestTimeout <= 0 {
		return apperrors.WrapError(apperrors.ErrInvalidConfig, "LLM_REQUEST_TIMEOUT must be positive when remote fallback is enabled")
	}
	return nil
}
