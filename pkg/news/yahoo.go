package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
)

const (
	TickerFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"
	TopStoriesURL = "https://finance.yahoo.com/rss/topstories"
	MarketNewsURL = "https://finance.yahoo.com/rss/rssmarketnews"
	QuotePageURL  = "https://finance.yahoo.com/quote/%s/news"
)

// PageFetcher is the subset of BackoffClient the news sources depend on.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, policy RetryPolicy) ([]byte, error)
}

type Extractor interface {
	Extract(document string) (string, bool)
}

type YahooClient struct {
	fetcher  PageFetcher
	articles *ArticleEnricher

	feedURL       string
	topStoriesURL string
	marketNewsURL string
	quotePageURL  string
}

func NewYahooClient(fetcher PageFetcher, extractor Extractor, articleConcurrency int) *YahooClient {
	return &YahooClient{
		fetcher:       fetcher,
		articles:      NewArticleEnricher(fetcher, extractor, articleConcurrency),
		feedURL:       TickerFeedURL,
		topStoriesURL: TopStoriesURL,
		marketNewsURL: MarketNewsURL,
		quotePageURL:  QuotePageURL,
	}
}

func (c *YahooClient) Name() string {
	return "Yahoo"
}

// FetchNews returns at most maxCount feed items for ticker, in feed order.
// With includeFullContent each article page is fetched and its body text
// attached; articles whose page cannot be fetched or has no body block are
// dropped and the result is marked partial. A failed feed yields an empty,
// partial result.
func (c *YahooClient) FetchNews(ctx context.Context, ticker string, maxCount int, includeFullContent bool) model.TickerNewsResult {
	symbol := normalizeSymbol(ticker)
	feedURL := fmt.Sprintf(c.feedURL, url.QueryEscape(symbol))

	raw, err := c.fetcher.Fetch(ctx, feedURL, RSSPolicy)
	if err != nil {
		slog.Error("error fetching ticker feed", "source", c.Name(), "ticker", symbol, "error", err)
		return model.EmptyResult(symbol)
	}

	return completeResult(ctx, c.articles, symbol, ParseFeed(raw), maxCount, includeFullContent)
}

func (c *YahooClient) TopStories(ctx context.Context) ([]model.NewsItem, error) {
	return c.fetchFeed(ctx, c.topStoriesURL)
}

func (c *YahooClient) MarketNews(ctx context.Context) ([]model.NewsItem, error) {
	return c.fetchFeed(ctx, c.marketNewsURL)
}

func (c *YahooClient) fetchFeed(ctx context.Context, feedURL string) ([]model.NewsItem, error) {
	raw, err := c.fetcher.Fetch(ctx, feedURL, RSSPolicy)
	if err != nil {
		return nil, fmt.Errorf("yahoo feed: %w", err)
	}
	return ParseFeed(raw), nil
}

// QuotePageNews reads the news stream embedded in a ticker's quote page.
func (c *YahooClient) QuotePageNews(ctx context.Context, ticker string, count int) ([]model.NewsItem, error) {
	pageURL := fmt.Sprintf(c.quotePageURL, url.PathEscape(normalizeSymbol(ticker)))
	page, err := c.fetcher.Fetch(ctx, pageURL, PagePolicy)
	if err != nil {
		return nil, fmt.Errorf("yahoo quote page: %w", err)
	}
	return ParseQuotePage(string(page), count), nil
}
