package news

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

const tickerRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Yahoo! Finance: TSLA News</title>
    <item>
      <title>Tesla Q3 deliveries beat estimates</title>
      <link>https://finance.yahoo.com/news/tesla-q3-deliveries.html</link>
      <description>  Q3 deliveries up  </description>
      <pubDate>Wed, 02 Oct 2024 13:05:00 +0000</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://finance.yahoo.com/news/empty.html</link>
      <description></description>
    </item>
    <item>
      <title>Tesla robotaxi event recap</title>
      <link>https://finance.yahoo.com/news/tesla-robotaxi.html</link>
    </item>
  </channel>
</rss>`

const updatedOnlyAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Market</title>
  <entry>
    <title>Futures edge higher</title>
    <link href="https://example.com/futures"/>
    <summary>Stock futures rose ahead of CPI.</summary>
    <updated>2024-10-02T10:00:00Z</updated>
  </entry>
</feed>`

const itunesRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Markets Daily</title>
    <item>
      <title>Episode 12</title>
      <link>https://example.com/ep12</link>
      <description>Long show notes</description>
      <itunes:summary>Rates and earnings</itunes:summary>
    </item>
  </channel>
</rss>`

func TestParseFeed_MapsEntriesInOrder(t *testing.T) {
	items := ParseFeed([]byte(tickerRSS))

	assert.Equal(t, 2, len(items))

	first := items[0]
	assert.Equal(t, "Tesla Q3 deliveries beat estimates", first.Title)
	assert.Equal(t, "https://finance.yahoo.com/news/tesla-q3-deliveries.html", first.Link)
	assert.Equal(t, "Q3 deliveries up", first.Summary)
	assert.NotEqual(t, nil, first.PublishedAt)
	assert.Equal(t, 2024, first.PublishedAt.Year())
	assert.Equal(t, time.October, first.PublishedAt.Month())

	second := items[1]
	assert.Equal(t, "Tesla robotaxi event recap", second.Title)
	assert.Equal(t, "", second.Summary)
	assert.Equal(t, true, second.PublishedAt == nil)
}

func TestParseFeed_FallsBackToUpdated(t *testing.T) {
	items := ParseFeed([]byte(updatedOnlyAtom))

	assert.Equal(t, 1, len(items))
	assert.Equal(t, "Stock futures rose ahead of CPI.", items[0].Summary)
	assert.Equal(t, "https://example.com/futures", items[0].Link)
	assert.NotEqual(t, nil, items[0].PublishedAt)
	assert.Equal(t, 10, items[0].PublishedAt.Hour())
}

func TestParseFeed_PrefersExplicitSummary(t *testing.T) {
	items := ParseFeed([]byte(itunesRSS))

	assert.Equal(t, 1, len(items))
	assert.Equal(t, "Rates and earnings", items[0].Summary)
}

func TestParseFeed_BadPayloads(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "nil", input: nil},
		{name: "whitespace", input: []byte("   \n")},
		{name: "html", input: []byte("<html><body>Too Many Requests</body></html>")},
		{name: "json", input: []byte(`{"items":[]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ParseFeed(tt.input)
			assert.NotEqual(t, nil, items)
			assert.Equal(t, 0, len(items))
		})
	}
}

func TestParseFeed_TruncatedDocumentDoesNotPanic(t *testing.T) {
	items := ParseFeed([]byte(`<rss version="2.0"><channel><item><title>cut`))
	assert.NotEqual(t, nil, items)
}
