package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/digest"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
)

type fakeDigester struct {
	digest model.AggregateDigest
	err    error
	single model.TickerNewsResult

	req digest.Request
}

func (f *fakeDigester) Run(ctx context.Context, req digest.Request) (model.AggregateDigest, error) {
	f.req = req
	return f.digest, f.err
}

func (f *fakeDigester) SummarizeTicker(ctx context.Context, ticker string, maxArticles int, includeFullContent bool) model.TickerNewsResult {
	res := f.single
	res.Ticker = ticker
	return res
}

func newDigestRouter(d Digester) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	h := NewDigestHandler(d)
	r.GET("/digest", h.GetDigest)
	r.GET("/summarize-news", h.SummarizeNews)
	return r
}

func TestGetDigest(t *testing.T) {
	d := &fakeDigester{digest: model.AggregateDigest{
		PerTicker: []model.TickerNewsResult{
			{Ticker: "AAPL", Items: []model.NewsItem{
				model.NewNewsItem("iPhone sales", "https://example.com/iphone", "", nil).WithSummary("Sales rose 5%."),
			}},
			{Ticker: "MSFT", Items: []model.NewsItem{}, Partial: true},
		},
		Overview: "Big tech had a mixed day.",
	}}
	r := newDigestRouter(d)

	w := serve(r, "/digest?query=big+tech&top_k=2&max_articles=3")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, digest.Request{Query: "big tech", TopK: 2, MaxArticles: 3}, d.req)

	var res DigestResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "Big tech had a mixed day.", res.Overview)
	assert.Equal(t, 2, len(res.Tickers))
	assert.Equal(t, "AAPL", res.Tickers[0].Ticker)
	assert.Equal(t, []SummarizedItemResponse{{Title: "iPhone sales", Summary: "Sales rose 5%.", URL: "https://example.com/iphone"}}, res.Tickers[0].Summaries)
	assert.Equal(t, "MSFT", res.Tickers[1].Ticker)
	assert.Equal(t, true, res.Tickers[1].Partial)
	assert.Equal(t, 0, len(res.Tickers[1].Summaries))
}

func TestGetDigest_Defaults(t *testing.T) {
	d := &fakeDigester{}
	r := newDigestRouter(d)

	w := serve(r, "/digest?query=chips&top_k=50&with_content=1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, digest.Request{Query: "chips", TopK: 10, MaxArticles: 5, IncludeFullContent: true}, d.req)
}

func TestGetDigest_EmptyQuery(t *testing.T) {
	r := newDigestRouter(&fakeDigester{})

	w := serve(r, "/digest?query=")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDigest_SelectionFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "selection", err: fmt.Errorf("%w: %w", digest.ErrTickerSelection, errors.New("mistral 503")), code: http.StatusBadGateway},
		{name: "catalog", err: fmt.Errorf("%w: %w", digest.ErrCatalog, errors.New("db down")), code: http.StatusBadGateway},
		{name: "other", err: errors.New("unexpected"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newDigestRouter(&fakeDigester{err: tt.err})

			w := serve(r, "/digest?query=ev")

			assert.Equal(t, tt.code, w.Code)
			var res map[string]any
			json.Unmarshal(w.Body.Bytes(), &res)
			assert.Equal(t, tt.err.Error(), res["cause"])
			_, hasTickers := res["tickers"]
			assert.Equal(t, false, hasTickers)
		})
	}
}

func TestSummarizeNews(t *testing.T) {
	d := &fakeDigester{single: model.TickerNewsResult{Items: []model.NewsItem{
		model.NewNewsItem("Tesla Q3", "https://example.com/tsla", "", nil).WithSummary("Deliveries rose."),
	}}}
	r := newDigestRouter(d)

	w := serve(r, "/summarize-news?ticker=tsla")

	assert.Equal(t, http.StatusOK, w.Code)
	var res SummarizedNewsResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "TSLA", res.Ticker)
	assert.Equal(t, "Deliveries rose.", res.Summaries[0].Summary)
}

func TestSummarizeNews_NoNews(t *testing.T) {
	r := newDigestRouter(&fakeDigester{single: model.EmptyResult("")})

	w := serve(r, "/summarize-news?ticker=ZZZZ")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestID(t *testing.T) {
	r := newDigestRouter(&fakeDigester{})

	w := serve(r, "/digest?query=")
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.Equal(t, nil, err)

	given := uuid.NewString()
	w2 := httptestWithHeader(r, "/digest?query=", RequestIDHeader, given)
	assert.Equal(t, given, w2.Header().Get(RequestIDHeader))
}
