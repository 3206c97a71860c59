package news

import (
	"context"
	"strings"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
)

// completeResult truncates source items to maxCount and, when requested,
// attaches article bodies. Dropped articles mark the result partial.
func completeResult(ctx context.Context, articles *ArticleEnricher, symbol string, items []model.NewsItem, maxCount int, includeFullContent bool) model.TickerNewsResult {
	items = truncate(items, maxCount)
	result := model.TickerNewsResult{Ticker: symbol, Items: items}
	if !includeFullContent || len(items) == 0 || articles == nil {
		return result
	}

	result.Items = articles.Attach(ctx, symbol, items)
	result.Partial = len(result.Items) < len(items)
	return result
}

func normalizeSymbol(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func truncate(items []model.NewsItem, maxCount int) []model.NewsItem {
	if maxCount < 1 {
		return []model.NewsItem{}
	}
	if len(items) > maxCount {
		return items[:maxCount]
	}
	return items
}
