package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/gin-gonic/gin"
)

type NewsSource interface {
	FetchNews(ctx context.Context, ticker string, maxCount int, includeFullContent bool) model.TickerNewsResult
}

type HeadlineSource interface {
	TopStories(ctx context.Context) ([]model.NewsItem, error)
	MarketNews(ctx context.Context) ([]model.NewsItem, error)
}

type TickerCatalog interface {
	Tickers(ctx context.Context) ([]model.Ticker, error)
}

type NewsHandler struct {
	source    NewsSource
	headlines HeadlineSource
	catalog   TickerCatalog
}

func NewNewsHandler(source NewsSource, headlines HeadlineSource, catalog TickerCatalog) *NewsHandler {
	return &NewsHandler{source: source, headlines: headlines, catalog: catalog}
}

func (h *NewsHandler) GetNews(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ticker is required"})
		return
	}

	maxArticles := getMaxArticles(c)
	withContent := getQueryBool("with_content", c)

	result := h.source.FetchNews(c.Request.Context(), ticker, maxArticles, withContent)

	c.JSON(http.StatusOK, TickerNewsResponse{
		Ticker:  result.Ticker,
		Partial: result.Partial,
		News:    newsItemResponses(result.Items),
	})
}

func (h *NewsHandler) GetTopStories(c *gin.Context) {
	h.serveHeadlines(c, "top stories", h.headlines.TopStories)
}

func (h *NewsHandler) GetMarketNews(c *gin.Context) {
	h.serveHeadlines(c, "market news", h.headlines.MarketNews)
}

func (h *NewsHandler) serveHeadlines(c *gin.Context, name string, fetch func(context.Context) ([]model.NewsItem, error)) {
	items, err := fetch(c.Request.Context())
	if err != nil {
		slog.Error("error fetching headlines", "feed", name, "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to fetch " + name, Cause: err.Error()})
		return
	}

	limit := getQueryBounded("limit", len(items), 100, c)
	if limit < len(items) {
		items = items[:limit]
	}

	c.JSON(http.StatusOK, FeedNewsResponse{News: newsItemResponses(items)})
}

func (h *NewsHandler) GetTickers(c *gin.Context) {
	tickers, err := h.catalog.Tickers(c.Request.Context())
	if err != nil {
		slog.Error("error loading ticker catalog", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Catalog unavailable"})
		return
	}

	res := make([]TickerResponse, 0, len(tickers))
	for _, t := range tickers {
		res = append(res, TickerResponse{Symbol: t.Symbol, Description: t.Description})
	}
	c.JSON(http.StatusOK, res)
}

func (h *NewsHandler) GetHealth(c *gin.Context) {
	_, err := h.catalog.Tickers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"catalog": "unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"catalog": "available",
	})
}
