// Package app wires configuration into the news pipeline components shared
// by the binaries under cmd/.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/db"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/catalog"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/config"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/digest"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/metrics"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/repository"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/pkg/llm"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/pkg/news"
)

type App struct {
	Config     *config.Config
	Yahoo      *news.YahooClient
	Source     news.TickerNewsFetcher
	Catalog    catalog.Catalog
	Generator  llm.Generator
	Aggregator *digest.Aggregator

	closers []func()
}

func SetupLogger(cfg *config.Config) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
}

// New builds the pipeline. Postgres and Redis are only dialed when their
// URLs are configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	limiters := news.ChainLimiter{news.NewHostRateLimiter(cfg.HostInterval)}
	if cfg.RedisURL != "" {
		if err := db.ConnectRedis(ctx, cfg.RedisURL); err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to Redis: %w", err)
		}
		a.closers = append(a.closers, db.CloseRedis)
		limiters = append(limiters, news.NewRedisWindowLimiter(db.Redis, db.PacingKeyPrefix, int64(cfg.PacingBudget), cfg.PacingWindow))
		slog.Info("shared pacing enabled", "budget", cfg.PacingBudget, "window", cfg.PacingWindow)
	}

	fetcher := news.NewBackoffClient(news.BackoffConfig{
		MaxAttempts: cfg.FetchMaxAttempts,
		BaseDelay:   cfg.FetchBaseDelay,
		Timeout:     cfg.FetchTimeout,
	},
		news.WithLimiter(limiters),
		news.WithObserver(news.LogObserver{Logger: slog.Default()}),
		news.WithObserver(metrics.FetchObserver{}),
	)
	extractor := news.NewContentExtractor(news.ContentBlockClass, cfg.ContentFallbackReadability)

	a.Yahoo = news.NewYahooClient(fetcher, extractor, cfg.ArticleConcurrency)
	a.Source = newSource(cfg, a.Yahoo, fetcher, news.NewArticleEnricher(fetcher, extractor, cfg.ArticleConcurrency))

	cat, err := a.buildCatalog(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Catalog = cat

	a.Generator = NewGenerator(cfg)
	a.Aggregator = digest.NewAggregator(
		a.Catalog,
		llm.NewTickerSelector(a.Generator),
		a.Source,
		llm.NewSummarizer(a.Generator),
		a.Generator,
		digest.Options{
			TickerConcurrency:  cfg.TickerConcurrency,
			SummaryConcurrency: cfg.SummaryConcurrency,
			Timeout:            cfg.AggregateTimeout,
			FetchTimeout:       cfg.FetchStageTimeout,
			SummaryMaxLength:   cfg.SummaryMaxLength,
			SummaryMinLength:   cfg.SummaryMinLength,
		},
	)

	slog.Info("pipeline ready", "source", a.Source.Name(), "generator", a.Generator.Name())
	return a, nil
}

func newSource(cfg *config.Config, yahoo *news.YahooClient, fetcher *news.BackoffClient, articles *news.ArticleEnricher) news.TickerNewsFetcher {
	switch cfg.NewsSource {
	case config.SourceFinnhub:
		return news.NewFinnHubClient(cfg.FinnhubAPIKey, articles)
	case config.SourceAlphaVantage:
		return news.NewAlphaVantageClient(cfg.AlphaVantageAPIKey, fetcher, articles)
	case config.SourceMassive:
		return news.NewMassiveClient(cfg.MassiveAPIKey, fetcher, articles)
	default:
		return yahoo
	}
}

func (a *App) buildCatalog(ctx context.Context) (catalog.Catalog, error) {
	if a.Config.DatabaseURL == "" {
		return catalog.Default()
	}

	if err := db.Connect(a.Config.DatabaseURL); err != nil {
		return nil, fmt.Errorf("connecting to DB: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	return catalog.NewStore(repository.NewTickerRepository(db.DB)), nil
}

// NewGenerator returns the configured LLM provider.
func NewGenerator(cfg *config.Config) llm.Generator {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case config.ProviderAnthropic:
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		return llm.NewMistralClient(cfg.MistralAPIKey, cfg.MistralModel, cfg.MistralBaseURL)
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
