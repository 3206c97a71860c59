package news

import (
	"context"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
)

// TickerNewsFetcher produces a bounded, feed-ordered list of news items for a
// ticker. Implementations never return an error: a failed feed is reported as
// an empty, partial result.
type TickerNewsFetcher interface {
	FetchNews(ctx context.Context, ticker string, maxCount int, includeFullContent bool) model.TickerNewsResult
	Name() string
}
