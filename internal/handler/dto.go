package handler

import (
	"time"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
)

type NewsItemResponse struct {
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	Summary     string  `json:"summary"`
	Publisher   string  `json:"publisher,omitempty"`
	PublishedAt string  `json:"published_at,omitempty"`
	Content     *string `json:"content,omitempty"`
}

type TickerNewsResponse struct {
	Ticker  string             `json:"ticker"`
	Partial bool               `json:"partial"`
	News    []NewsItemResponse `json:"news"`
}

type FeedNewsResponse struct {
	News []NewsItemResponse `json:"news"`
}

type SummarizedItemResponse struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

type SummarizedNewsResponse struct {
	Ticker    string                   `json:"ticker"`
	Partial   bool                     `json:"partial"`
	Summaries []SummarizedItemResponse `json:"summaries"`
}

type DigestResponse struct {
	Query    string                   `json:"query"`
	Tickers  []SummarizedNewsResponse `json:"tickers"`
	Overview string                   `json:"overview"`
}

type TickerResponse struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Cause string `json:"cause,omitempty"`
}

func newsItemResponses(items []model.NewsItem) []NewsItemResponse {
	res := make([]NewsItemResponse, 0, len(items))
	for _, item := range items {
		r := NewsItemResponse{
			Title:     item.Title,
			Link:      item.Link,
			Summary:   item.Summary,
			Publisher: item.Publisher,
			Content:   item.Content,
		}
		if item.PublishedAt != nil {
			r.PublishedAt = item.PublishedAt.Format(time.RFC3339)
		}
		res = append(res, r)
	}
	return res
}

func summarizedResponse(result model.TickerNewsResult) SummarizedNewsResponse {
	summaries := make([]SummarizedItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		summaries = append(summaries, SummarizedItemResponse{
			Title:   item.Title,
			Summary: item.Summary,
			URL:     item.Link,
		})
	}
	return SummarizedNewsResponse{
		Ticker:    result.Ticker,
		Partial:   result.Partial,
		Summaries: summaries,
	}
}
