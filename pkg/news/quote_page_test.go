package news

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

const quotePage = `<html><head><script>
root.App.main = {"context":{"dispatcher":{"stores":{"StreamStore":{"streams":{
  "quote.AAPL.mega_news":{"data":[
    {"title":"Apple unveils new iPhone","link":"https://finance.yahoo.com/news/apple-iphone.html","summary":" Launch event recap ","publisher":{"name":"Reuters"},"providerPublishTime":1727874300},
    {"title":"","link":"https://finance.yahoo.com/news/blank.html","summary":""},
    {"title":"Services revenue","link":"https://finance.yahoo.com/news/services.html","content":[{"content":"Services hit a record"}]}
  ]}
}}}}}};
(function(root){}(this));
</script></head><body></body></html>`

func TestParseQuotePage(t *testing.T) {
	items := ParseQuotePage(quotePage, 10)

	assert.Equal(t, 2, len(items))

	assert.Equal(t, "Apple unveils new iPhone", items[0].Title)
	assert.Equal(t, "Launch event recap", items[0].Summary)
	assert.Equal(t, "Reuters", items[0].Publisher)
	assert.NotEqual(t, nil, items[0].PublishedAt)
	assert.Equal(t, int64(1727874300), items[0].PublishedAt.Unix())

	assert.Equal(t, "Services revenue", items[1].Title)
	assert.Equal(t, "Services hit a record", items[1].Summary)
	assert.Equal(t, true, items[1].PublishedAt == nil)
}

func TestParseQuotePage_RespectsCount(t *testing.T) {
	items := ParseQuotePage(quotePage, 1)

	assert.Equal(t, 1, len(items))
}

func TestParseQuotePage_Misses(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{name: "no app state", page: `<html><body>nothing here</body></html>`},
		{name: "invalid json", page: `root.App.main = {"context": oops};`},
		{name: "no news stream", page: `root.App.main = {"context":{"dispatcher":{"stores":{"StreamStore":{"streams":{"quote.AAPL.other":{"data":[]}}}}}}};`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ParseQuotePage(tt.page, 5)
			assert.NotEqual(t, nil, items)
			assert.Equal(t, 0, len(items))
		})
	}
}

func TestParseQuotePage_BracesInsideStrings(t *testing.T) {
	page := `<script>root.App.main = {"context":{"dispatcher":{"stores":{"StreamStore":{"streams":{
  "quote.TSLA.mega_news":{"data":[
    {"title":"Tesla says \"a };b\" {again}","link":"https://finance.yahoo.com/news/tesla.html","summary":"Quoted };"},
    {"title":"Second story","link":"https://finance.yahoo.com/news/second.html","summary":"More"}
  ]}
}}}}}};
var other = {"x": 1};</script>`

	items := ParseQuotePage(page, 10)

	assert.Equal(t, 2, len(items))
	assert.Equal(t, `Tesla says "a };b" {again}`, items[0].Title)
	assert.Equal(t, "Quoted };", items[0].Summary)
	assert.Equal(t, "Second story", items[1].Title)
}

func TestAppState(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		state string
		ok    bool
	}{
		{name: "balanced", page: `x; root.App.main = {"a":{"b":"};"}}; y`, state: `{"a":{"b":"};"}}`, ok: true},
		{name: "escaped quote", page: `root.App.main={"a":"\"}"};`, state: `{"a":"\"}"}`, ok: true},
		{name: "unclosed falls back", page: `root.App.main = {"a":"x};`, state: `{"a":"x}`, ok: true},
		{name: "missing", page: `window.state = {};`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, ok := appState(tt.page)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.state, state)
		})
	}
}
