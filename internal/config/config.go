package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderMistral   = "mistral"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	SourceYahoo        = "yahoo"
	SourceFinnhub      = "finnhub"
	SourceAlphaVantage = "alphavantage"
	SourceMassive      = "massive"
)

// maxFetchAttempts bounds FETCH_MAX_ATTEMPTS.
const maxFetchAttempts = 20

// Config holds the service configuration. Values come from defaults, then
// the optional YAML file named by CONFIG_FILE, then environment variables.
type Config struct {
	Port        string `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`
	LogLevel    string `yaml:"log_level"`

	LLMProvider     string `yaml:"llm_provider"`
	MistralAPIKey   string `yaml:"mistral_api_key"`
	MistralModel    string `yaml:"mistral_model"`
	MistralBaseURL  string `yaml:"mistral_base_url"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIModel     string `yaml:"openai_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	NewsSource         string `yaml:"news_source"`
	FinnhubAPIKey      string `yaml:"finnhub_api_key"`
	AlphaVantageAPIKey string `yaml:"alpha_vantage_api_key"`
	MassiveAPIKey      string `yaml:"massive_api_key"`

	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`

	FetchMaxAttempts int           `yaml:"fetch_max_attempts"`
	FetchBaseDelay   time.Duration `yaml:"fetch_base_delay"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	HostInterval     time.Duration `yaml:"host_interval"`
	PacingBudget     int           `yaml:"pacing_budget"`
	PacingWindow     time.Duration `yaml:"pacing_window"`

	TickerConcurrency  int           `yaml:"ticker_concurrency"`
	ArticleConcurrency int           `yaml:"article_concurrency"`
	SummaryConcurrency int           `yaml:"summary_concurrency"`
	AggregateTimeout   time.Duration `yaml:"aggregate_timeout"`
	FetchStageTimeout  time.Duration `yaml:"fetch_stage_timeout"`

	SummaryMaxLength int `yaml:"summary_max_length"`
	SummaryMinLength int `yaml:"summary_min_length"`

	ContentFallbackReadability bool `yaml:"content_fallback_readability"`
}

func Defaults() *Config {
	return &Config{
		Port:               "8080",
		LogLevel:           "info",
		LLMProvider:        ProviderMistral,
		MistralModel:       "mistral-small-2506",
		OpenAIModel:        "gpt-4o-mini",
		NewsSource:         SourceYahoo,
		FetchMaxAttempts:   5,
		FetchBaseDelay:     time.Second,
		FetchTimeout:       30 * time.Second,
		HostInterval:       250 * time.Millisecond,
		PacingBudget:       60,
		PacingWindow:       time.Minute,
		TickerConcurrency:  3,
		ArticleConcurrency: 4,
		SummaryConcurrency: 4,
		AggregateTimeout:   60 * time.Second,
		FetchStageTimeout:  45 * time.Second,
		SummaryMaxLength:   512,
		SummaryMinLength:   10,
	}
}

func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.FrontendURL, "FRONTEND_URL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LLMProvider, "LLM_PROVIDER")
	setString(&c.MistralAPIKey, "MISTRAL_API_KEY")
	setString(&c.MistralModel, "MISTRAL_MODEL")
	setString(&c.MistralBaseURL, "MISTRAL_BASE_URL")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.OpenAIModel, "OPENAI_MODEL")
	setString(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.NewsSource, "NEWS_SOURCE")
	setString(&c.FinnhubAPIKey, "FINNHUB_API_KEY")
	setString(&c.AlphaVantageAPIKey, "ALPHA_VANTAGE_API_KEY")
	setString(&c.MassiveAPIKey, "MASSIVE_API_KEY")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")

	ints := map[string]*int{
		"FETCH_MAX_ATTEMPTS":  &c.FetchMaxAttempts,
		"PACING_BUDGET":       &c.PacingBudget,
		"TICKER_CONCURRENCY":  &c.TickerConcurrency,
		"ARTICLE_CONCURRENCY": &c.ArticleConcurrency,
		"SUMMARY_CONCURRENCY": &c.SummaryConcurrency,
		"SUMMARY_MAX_LENGTH":  &c.SummaryMaxLength,
		"SUMMARY_MIN_LENGTH":  &c.SummaryMinLength,
	}
	for key, dst := range ints {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}

	durations := map[string]*time.Duration{
		"FETCH_BASE_DELAY":    &c.FetchBaseDelay,
		"FETCH_TIMEOUT":       &c.FetchTimeout,
		"HOST_INTERVAL":       &c.HostInterval,
		"PACING_WINDOW":       &c.PacingWindow,
		"AGGREGATE_TIMEOUT":   &c.AggregateTimeout,
		"FETCH_STAGE_TIMEOUT": &c.FetchStageTimeout,
	}
	for key, dst := range durations {
		if err := setDuration(dst, key); err != nil {
			return err
		}
	}

	if value := os.Getenv("CONTENT_FALLBACK_READABILITY"); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid CONTENT_FALLBACK_READABILITY: %w", err)
		}
		c.ContentFallbackReadability = parsed
	}
	return nil
}

func (c *Config) Validate() error {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	switch c.LLMProvider {
	case ProviderMistral, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	c.NewsSource = strings.ToLower(strings.TrimSpace(c.NewsSource))
	switch c.NewsSource {
	case SourceYahoo:
	case SourceFinnhub:
		if c.FinnhubAPIKey == "" {
			return fmt.Errorf("NEWS_SOURCE=finnhub requires FINNHUB_API_KEY")
		}
	case SourceAlphaVantage:
		if c.AlphaVantageAPIKey == "" {
			return fmt.Errorf("NEWS_SOURCE=alphavantage requires ALPHA_VANTAGE_API_KEY")
		}
	case SourceMassive:
		if c.MassiveAPIKey == "" {
			return fmt.Errorf("NEWS_SOURCE=massive requires MASSIVE_API_KEY")
		}
	default:
		return fmt.Errorf("unknown NEWS_SOURCE %q", c.NewsSource)
	}

	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.FetchMaxAttempts < 1 || c.FetchMaxAttempts > maxFetchAttempts {
		return fmt.Errorf("FETCH_MAX_ATTEMPTS must be between 1 and %d", maxFetchAttempts)
	}
	if c.FetchBaseDelay < 0 || c.HostInterval < 0 {
		return fmt.Errorf("FETCH_BASE_DELAY and HOST_INTERVAL cannot be negative")
	}
	if c.FetchTimeout <= 0 || c.AggregateTimeout <= 0 || c.FetchStageTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT, AGGREGATE_TIMEOUT and FETCH_STAGE_TIMEOUT must be positive")
	}
	if c.TickerConcurrency < 1 || c.ArticleConcurrency < 1 || c.SummaryConcurrency < 1 {
		return fmt.Errorf("concurrency limits must be at least 1")
	}
	if c.SummaryMaxLength < 1 || c.SummaryMinLength < 0 || c.SummaryMinLength > c.SummaryMaxLength {
		return fmt.Errorf("invalid summary length bounds %d..%d", c.SummaryMinLength, c.SummaryMaxLength)
	}
	if c.RedisURL != "" && (c.PacingBudget < 1 || c.PacingWindow <= 0) {
		return fmt.Errorf("PACING_BUDGET and PACING_WINDOW must be positive when REDIS_URL is set")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto slog; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AllowedOrigins is the CORS allow-list for the API.
func (c *Config) AllowedOrigins() []string {
	origins := []string{"http://localhost:3000"}
	if c.FrontendURL != "" {
		origins = append(origins, c.FrontendURL)
	}
	return origins
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setInt(dst *int, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s format: %w", key, err)
	}
	*dst = parsed
	return nil
}
