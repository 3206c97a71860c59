package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
)

const AlphaVantageNewsURL = "https://www.alphavantage.co/query?function=NEWS_SENTIMENT&tickers=%s&limit=%d&sort=LATEST&apikey=%s"

const alphaVantageTimeLayout = "20060102T150405"

// ErrAPILimit is returned when a provider answers 200 with a quota notice
// instead of data.
var ErrAPILimit = errors.New("api limit notice")

// AlphaVantageClient serves ticker news from Alpha Vantage's NEWS_SENTIMENT
// function.
type AlphaVantageClient struct {
	apiKey   string
	fetcher  PageFetcher
	articles *ArticleEnricher
	newsURL  string
}

func NewAlphaVantageClient(apiKey string, fetcher PageFetcher, articles *ArticleEnricher) *AlphaVantageClient {
	return &AlphaVantageClient{
		apiKey:   apiKey,
		fetcher:  fetcher,
		articles: articles,
		newsURL:  AlphaVantageNewsURL,
	}
}

func (c *AlphaVantageClient) Name() string {
	return "AlphaVantage"
}

func (c *AlphaVantageClient) FetchNews(ctx context.Context, ticker string, maxCount int, includeFullContent bool) model.TickerNewsResult {
	symbol := normalizeSymbol(ticker)
	reqURL := fmt.Sprintf(c.newsURL, url.QueryEscape(symbol), max(maxCount, 1), url.QueryEscape(c.apiKey))

	raw, err := c.fetcher.Fetch(ctx, reqURL, APIPolicy)
	if err != nil {
		slog.Error("error fetching news sentiment", "source", c.Name(), "ticker", symbol, "error", err)
		return model.EmptyResult(symbol)
	}

	items, err := parseAlphaVantage(raw)
	if err != nil {
		slog.Error("error decoding news sentiment", "source", c.Name(), "ticker", symbol, "error", err)
		return model.EmptyResult(symbol)
	}

	return completeResult(ctx, c.articles, symbol, items, maxCount, includeFullContent)
}

func parseAlphaVantage(raw []byte) ([]model.NewsItem, error) {
	var res avResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	if res.Feed == nil {
		if notice := firstNonEmpty(res.Information, res.Note, res.ErrorMessage); notice != "" {
			return nil, fmt.Errorf("%w: %s", ErrAPILimit, notice)
		}
	}

	items := make([]model.NewsItem, 0, len(res.Feed))
	for _, entry := range res.Feed {
		var publishedAt *time.Time
		if t, err := time.Parse(alphaVantageTimeLayout, entry.TimePublished); err == nil {
			publishedAt = &t
		}

		item := model.NewNewsItem(entry.Title, entry.URL, entry.Summary, publishedAt)
		item.Publisher = entry.Source
		if !item.HasText() {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type avResponse struct {
	Feed         []avFeedItem `json:"feed"`
	Information  string       `json:"Information"`
	Note         string       `json:"Note"`
	ErrorMessage string       `json:"Error Message"`
}

type avFeedItem struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	TimePublished string `json:"time_published"`
}
