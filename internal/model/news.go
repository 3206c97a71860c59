package model

import (
	"strings"
	"time"
)

// NewsItem is one article reference. Construct it with NewNewsItem and treat
// it as read-only afterwards.
type NewsItem struct {
	Title       string
	Link        string
	Summary     string
	Publisher   string
	PublishedAt *time.Time
	Content     *string
}

func NewNewsItem(title, link, summary string, publishedAt *time.Time) NewsItem {
	return NewsItem{
		Title:       strings.TrimSpace(title),
		Link:        strings.TrimSpace(link),
		Summary:     strings.TrimSpace(summary),
		PublishedAt: publishedAt,
	}
}

// WithContent returns a copy of the item carrying extracted article text.
func (n NewsItem) WithContent(content string) NewsItem {
	n.Content = &content
	return n
}

// WithSummary returns a copy of the item with its summary replaced and its
// content cleared.
func (n NewsItem) WithSummary(summary string) NewsItem {
	n.Summary = summary
	n.Content = nil
	return n
}

// BestText is the text downstream summarization should work from:
// content, else summary, else title.
func (n NewsItem) BestText() string {
	if n.Content != nil && strings.TrimSpace(*n.Content) != "" {
		return *n.Content
	}
	if n.Summary != "" {
		return n.Summary
	}
	return n.Title
}

// HasText reports whether the item survives the empty-text policy.
func (n NewsItem) HasText() bool {
	return strings.TrimSpace(n.BestText()) != ""
}

type Ticker struct {
	Symbol      string `yaml:"symbol" json:"symbol"`
	Description string `yaml:"description" json:"description"`
}

const (
	OutcomeSuccess   = "success"
	OutcomeRetry     = "retry"
	OutcomeFailed    = "failed"
	OutcomeExhausted = "exhausted"
	OutcomeCanceled  = "canceled"
)

// FetchAttempt records a single HTTP attempt. It is handed to observers and
// never stored.
type FetchAttempt struct {
	URL           string
	AttemptNumber int
	HTTPStatus    int
	Outcome       string
	Wait          time.Duration
	Err           error
}

type TickerNewsResult struct {
	Ticker  string
	Items   []NewsItem
	Partial bool
}

// EmptyResult is the representation of "no news for this ticker".
func EmptyResult(ticker string) TickerNewsResult {
	return TickerNewsResult{Ticker: ticker, Items: []NewsItem{}, Partial: true}
}

type AggregateDigest struct {
	PerTicker []TickerNewsResult
	Overview  string
}
