package news

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/tidwall/gjson"
)

var (
	reAppStateStart = regexp.MustCompile(`root\.App\.main\s*=\s*\{`)
	reAppState      = regexp.MustCompile(`(?s)root\.App\.main\s*=\s*(\{.*?\});`)
)

// ParseQuotePage reads the news stream out of the application state a quote
// page embeds as `root.App.main = {...};`. Pages without that state, or with
// an unexpected shape, yield an empty slice.
func ParseQuotePage(page string, count int) []model.NewsItem {
	items := []model.NewsItem{}

	state, ok := appState(page)
	if !ok {
		slog.Debug("quote page has no embedded app state")
		return items
	}
	if !gjson.Valid(state) {
		slog.Warn("quote page app state is not valid JSON")
		return items
	}

	var stream gjson.Result
	gjson.Get(state, "context.dispatcher.stores.StreamStore.streams").ForEach(func(key, value gjson.Result) bool {
		if strings.HasSuffix(key.String(), "_news") {
			stream = value.Get("data")
			return false
		}
		return true
	})
	if !stream.IsArray() {
		slog.Warn("quote page app state has no news stream")
		return items
	}

	for _, entry := range stream.Array() {
		if len(items) >= count {
			break
		}

		summary := entry.Get("summary").String()
		if summary == "" {
			summary = entry.Get("content.0.content").String()
		}

		var publishedAt *time.Time
		if ts := entry.Get("providerPublishTime"); ts.Exists() && ts.Int() > 0 {
			t := time.Unix(ts.Int(), 0).UTC()
			publishedAt = &t
		}

		item := model.NewNewsItem(entry.Get("title").String(), entry.Get("link").String(), summary, publishedAt)
		item.Publisher = entry.Get("publisher.name").String()
		if !item.HasText() {
			continue
		}
		items = append(items, item)
	}
	return items
}

// appState returns the object literal assigned to root.App.main. The object
// is delimited by balancing braces outside JSON strings; if it never closes,
// the first `};` after the assignment ends it.
func appState(page string) (string, bool) {
	loc := reAppStateStart.FindStringIndex(page)
	if loc == nil {
		return "", false
	}
	start := loc[1] - 1
	if n := objectLen(page[start:]); n > 0 {
		return page[start : start+n], true
	}
	if match := reAppState.FindStringSubmatch(page); match != nil {
		return match[1], true
	}
	return "", false
}

// objectLen returns the length of the brace-balanced object at the start of
// s, or 0 if it is not closed.
func objectLen(s string) int {
	var (
		depth    int
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return 0
}
