package news

import (
	"context"
	"log/slog"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
)

const finnhubLookback = 7 * 24 * time.Hour

// FinnHubClient serves ticker news from Finnhub's company-news endpoint.
// Full-content mode goes through the same article path as the Yahoo source.
type FinnHubClient struct {
	client   *finnhub.DefaultApiService
	articles *ArticleEnricher
	now      func() time.Time
}

func NewFinnHubClient(apiKey string, articles *ArticleEnricher) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{client: client, articles: articles, now: time.Now}
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}

func (c *FinnHubClient) FetchNews(ctx context.Context, ticker string, maxCount int, includeFullContent bool) model.TickerNewsResult {
	symbol := normalizeSymbol(ticker)
	to := c.now().UTC()
	from := to.Add(-finnhubLookback)

	res, _, err := c.client.CompanyNews(ctx).
		Symbol(symbol).
		From(from.Format("2006-01-02")).
		To(to.Format("2006-01-02")).
		Execute()
	if err != nil {
		slog.Error("error fetching company news", "source", c.Name(), "ticker", symbol, "error", err)
		return model.EmptyResult(symbol)
	}

	return completeResult(ctx, c.articles, symbol, companyNewsItems(res), maxCount, includeFullContent)
}

func companyNewsItems(res []finnhub.CompanyNews) []model.NewsItem {
	items := make([]model.NewsItem, 0, len(res))
	for _, news := range res {
		var title, link, summary string

		if news.Headline != nil {
			title = *news.Headline
		}

		if news.Url != nil {
			link = *news.Url
		}

		if news.Summary != nil {
			summary = *news.Summary
		}

		var publishedAt *time.Time
		if news.Datetime != nil && *news.Datetime > 0 {
			t := time.Unix(*news.Datetime, 0).UTC()
			publishedAt = &t
		}

		item := model.NewNewsItem(title, link, summary, publishedAt)
		if news.Source != nil {
			item.Publisher = *news.Source
		}

		if !item.HasText() {
			continue
		}
		items = append(items, item)
	}
	return items
}
