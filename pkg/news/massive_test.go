package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

const massivePayload = `{
  "results": [
    {
      "id": "576d99da",
      "title": "Acme Corp Reports Q4 Earnings",
      "description": "Acme Corp beat expectations with strong Q4 results.",
      "article_url": "http://%s/article/1",
      "published_utc": "2026-02-26T11:02:00Z",
      "tickers": ["ACME", "SPY"],
      "publisher": {"name": "GlobeNewswire Inc."}
    },
    {
      "id": "8f1c0a2b",
      "title": "Acme guidance raised",
      "description": "",
      "article_url": "http://%s/article/2",
      "published_utc": "2026-02-25T09:00:00Z",
      "publisher": {"name": "Benzinga"}
    }
  ],
  "status": "OK"
}`

func TestMassiveFetchNews(t *testing.T) {
	var ticker string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/reference/news":
			ticker = r.URL.Query().Get("ticker")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(fmt.Sprintf(massivePayload, r.Host, r.Host)))
		case strings.HasPrefix(r.URL.Path, "/article/"):
			w.Write([]byte(articlePage("Body " + strings.TrimPrefix(r.URL.Path, "/article/"))))
		}
	}))
	defer srv.Close()

	fetcher := newRewritingBackoffClient(srv)
	client := NewMassiveClient("test-key", fetcher, NewArticleEnricher(fetcher, NewContentExtractor(ContentBlockClass, false), 2))
	res := client.FetchNews(context.Background(), "acme", 1, false)

	assert.Equal(t, "ACME", ticker)
	assert.Equal(t, "ACME", res.Ticker)
	assert.Equal(t, 1, len(res.Items))

	a := res.Items[0]
	assert.Equal(t, "Acme Corp Reports Q4 Earnings", a.Title)
	assert.Equal(t, "Acme Corp beat expectations with strong Q4 results.", a.Summary)
	assert.Equal(t, "GlobeNewswire Inc.", a.Publisher)
	assert.Equal(t, 2026, a.PublishedAt.Year())
	assert.Equal(t, time.February, a.PublishedAt.Month())
	assert.Equal(t, 26, a.PublishedAt.Day())

	full := client.FetchNews(context.Background(), "ACME", 5, true)
	assert.Equal(t, false, full.Partial)
	assert.Equal(t, 2, len(full.Items))
	assert.Equal(t, "Body 2", *full.Items[1].Content)
}

func TestMassiveFetchNews_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewMassiveClient("bad-key", newRewritingBackoffClient(srv), nil)
	res := client.FetchNews(context.Background(), "ACME", 5, true)

	assert.Equal(t, true, res.Partial)
	assert.Equal(t, 0, len(res.Items))
}

func TestParseMassive_ErrorStatus(t *testing.T) {
	_, err := parseMassive([]byte(`{"status": "ERROR", "error": "exceeded the maximum requests per minute"}`))
	assert.Equal(t, true, errors.Is(err, ErrAPILimit))
}
