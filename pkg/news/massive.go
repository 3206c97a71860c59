package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
)

const MassiveNewsURL = "https://api.massive.com/v2/reference/news?ticker=%s&limit=%d&order=desc&sort=published_utc&apiKey=%s"

// MassiveClient serves ticker news from the Massive reference news API.
type MassiveClient struct {
	apiKey   string
	fetcher  PageFetcher
	articles *ArticleEnricher
	newsURL  string
}

func NewMassiveClient(apiKey string, fetcher PageFetcher, articles *ArticleEnricher) *MassiveClient {
	return &MassiveClient{
		apiKey:   apiKey,
		fetcher:  fetcher,
		articles: articles,
		newsURL:  MassiveNewsURL,
	}
}

func (c *MassiveClient) Name() string {
	return "Massive"
}

func (c *MassiveClient) FetchNews(ctx context.Context, ticker string, maxCount int, includeFullContent bool) model.TickerNewsResult {
	symbol := normalizeSymbol(ticker)
	reqURL := fmt.Sprintf(c.newsURL, url.QueryEscape(symbol), max(maxCount, 1), url.QueryEscape(c.apiKey))

	raw, err := c.fetcher.Fetch(ctx, reqURL, APIPolicy)
	if err != nil {
		slog.Error("error fetching reference news", "source", c.Name(), "ticker", symbol, "error", err)
		return model.EmptyResult(symbol)
	}

	items, err := parseMassive(raw)
	if err != nil {
		slog.Error("error decoding reference news", "source", c.Name(), "ticker", symbol, "error", err)
		return model.EmptyResult(symbol)
	}

	return completeResult(ctx, c.articles, symbol, items, maxCount, includeFullContent)
}

func parseMassive(raw []byte) ([]model.NewsItem, error) {
	var res massiveResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("massive decode: %w", err)
	}
	if res.Status == "ERROR" {
		return nil, fmt.Errorf("%w: %s", ErrAPILimit, res.Error)
	}

	items := make([]model.NewsItem, 0, len(res.Results))
	for _, result := range res.Results {
		var publishedAt *time.Time
		if t, err := time.Parse(time.RFC3339, result.PublishedUTC); err == nil {
			t = t.UTC()
			publishedAt = &t
		}

		item := model.NewNewsItem(result.Title, result.ArticleURL, result.Description, publishedAt)
		item.Publisher = result.Publisher.Name
		if !item.HasText() {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

type massiveResponse struct {
	Status  string          `json:"status"`
	Error   string          `json:"error"`
	Results []massiveResult `json:"results"`
}

type massiveResult struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	ArticleURL   string           `json:"article_url"`
	PublishedUTC string           `json:"published_utc"`
	Publisher    massivePublisher `json:"publisher"`
}

type massivePublisher struct {
	Name string `json:"name"`
}
