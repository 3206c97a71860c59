package news

import (
	"context"
	"log/slog"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"golang.org/x/sync/errgroup"
)

const defaultArticleConcurrency = 4

// ArticleEnricher fetches article pages and attaches their body text.
type ArticleEnricher struct {
	fetcher     PageFetcher
	extractor   Extractor
	concurrency int
}

func NewArticleEnricher(fetcher PageFetcher, extractor Extractor, concurrency int) *ArticleEnricher {
	if concurrency < 1 {
		concurrency = defaultArticleConcurrency
	}
	return &ArticleEnricher{
		fetcher:     fetcher,
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// Attach returns the items whose page yielded content, in input order. Items
// that fail to fetch or extract are dropped; callers compare lengths to tell
// whether anything was lost.
func (e *ArticleEnricher) Attach(ctx context.Context, symbol string, items []model.NewsItem) []model.NewsItem {
	slots := make([]*model.NewsItem, len(items))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, item := range items {
		g.Go(func() error {
			content, ok := e.content(ctx, item.Link)
			if !ok {
				slog.Warn("dropping article without content", "ticker", symbol, "title", item.Title, "link", item.Link)
				return nil
			}
			enriched := item.WithContent(content)
			slots[i] = &enriched
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.NewsItem, 0, len(items))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func (e *ArticleEnricher) content(ctx context.Context, link string) (string, bool) {
	if link == "" || ctx.Err() != nil {
		return "", false
	}
	page, err := e.fetcher.Fetch(ctx, link, PagePolicy)
	if err != nil {
		slog.Error("error fetching article page", "link", link, "error", err)
		return "", false
	}
	return e.extractor.Extract(string(page))
}
