package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
)

type itemJSON struct {
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	Summary     string  `json:"summary"`
	Publisher   string  `json:"publisher,omitempty"`
	PublishedAt string  `json:"published_at,omitempty"`
	Content     *string `json:"content,omitempty"`
}

func writeJSON(w io.Writer, items []model.NewsItem, summaryOnly bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if summaryOnly {
		summaries := make([]string, 0, len(items))
		for _, item := range items {
			summaries = append(summaries, item.Summary)
		}
		return enc.Encode(summaries)
	}

	out := make([]itemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, itemJSON{
			Title:       item.Title,
			Link:        item.Link,
			Summary:     item.Summary,
			Publisher:   item.Publisher,
			PublishedAt: published(item),
			Content:     item.Content,
		})
	}
	return enc.Encode(out)
}

func writeText(w io.Writer, items []model.NewsItem, summaryOnly bool) {
	for _, item := range items {
		if summaryOnly {
			fmt.Fprintf(w, "Summary: %s\n\n", item.Summary)
			continue
		}
		fmt.Fprintf(w, "Title: %s\n", item.Title)
		fmt.Fprintf(w, "Link: %s\n", item.Link)
		fmt.Fprintf(w, "Published: %s\n", published(item))
		fmt.Fprintf(w, "Summary: %s\n\n", item.Summary)
	}
}

func published(item model.NewsItem) string {
	if item.PublishedAt == nil {
		return ""
	}
	return item.PublishedAt.Format(time.RFC3339)
}
