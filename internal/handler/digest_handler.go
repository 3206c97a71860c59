package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/digest"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/gin-gonic/gin"
)

type Digester interface {
	Run(ctx context.Context, req digest.Request) (model.AggregateDigest, error)
	SummarizeTicker(ctx context.Context, ticker string, maxArticles int, includeFullContent bool) model.TickerNewsResult
}

type DigestHandler struct {
	digester Digester
}

func NewDigestHandler(digester Digester) *DigestHandler {
	return &DigestHandler{digester: digester}
}

func (h *DigestHandler) GetDigest(c *gin.Context) {
	const (
		defaultTopK = 3
		maxTopK     = 10
	)

	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query is required"})
		return
	}

	req := digest.Request{
		Query:              query,
		TopK:               getQueryBounded("top_k", defaultTopK, maxTopK, c),
		MaxArticles:        getMaxArticles(c),
		IncludeFullContent: getQueryBool("with_content", c),
	}

	d, err := h.digester.Run(c.Request.Context(), req)
	if err != nil {
		slog.Error("error aggregating digest", "query", query, "error", err)
		if errors.Is(err, digest.ErrTickerSelection) || errors.Is(err, digest.ErrCatalog) {
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Could not determine relevant tickers", Cause: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Aggregation failed", Cause: err.Error()})
		return
	}

	tickers := make([]SummarizedNewsResponse, 0, len(d.PerTicker))
	for _, r := range d.PerTicker {
		tickers = append(tickers, summarizedResponse(r))
	}

	c.JSON(http.StatusOK, DigestResponse{
		Query:    query,
		Tickers:  tickers,
		Overview: d.Overview,
	})
}

func (h *DigestHandler) SummarizeNews(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ticker is required"})
		return
	}

	result := h.digester.SummarizeTicker(c.Request.Context(), ticker, getMaxArticles(c), getQueryBool("with_content", c))
	if len(result.Items) == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No news found for ticker."})
		return
	}

	c.JSON(http.StatusOK, summarizedResponse(result))
}
