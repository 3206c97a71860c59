package news

import (
	"bytes"
	"strings"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/mmcdole/gofeed"
)

// ParseFeed converts an RSS or Atom payload into news items in source order.
// Parsing is best-effort: a malformed or empty payload yields an empty slice.
func ParseFeed(raw []byte) []model.NewsItem {
	items := []model.NewsItem{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return items
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil || feed == nil {
		return items
	}

	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}

		item := model.NewNewsItem(entry.Title, entry.Link, entrySummary(entry), entry.PublishedParsed)
		if item.PublishedAt == nil {
			item.PublishedAt = entry.UpdatedParsed
		}
		if entry.Content != "" {
			if text := htmlToText(entry.Content); text != "" {
				item = item.WithContent(text)
			}
		}
		if !item.HasText() {
			continue
		}
		items = append(items, item)
	}
	return items
}

func entrySummary(entry *gofeed.Item) string {
	if entry.ITunesExt != nil && strings.TrimSpace(entry.ITunesExt.Summary) != "" {
		return entry.ITunesExt.Summary
	}
	return entry.Description
}
