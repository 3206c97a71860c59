package news

import (
	"testing"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/go-playground/assert/v2"
)

func ptr[T any](v T) *T {
	return &v
}

func TestCompanyNewsItems(t *testing.T) {
	res := []finnhub.CompanyNews{
		{
			Headline: ptr("Apple supplier ramps output"),
			Summary:  ptr(" Foxconn adds shifts "),
			Url:      ptr("https://example.com/foxconn"),
			Source:   ptr("Reuters"),
			Datetime: ptr(int64(1727874300)),
		},
		{
			Headline: ptr(""),
			Url:      ptr("https://example.com/blank"),
		},
		{
			Headline: ptr("No timestamp"),
		},
	}

	items := companyNewsItems(res)

	assert.Equal(t, 2, len(items))
	assert.Equal(t, "Apple supplier ramps output", items[0].Title)
	assert.Equal(t, "Foxconn adds shifts", items[0].Summary)
	assert.Equal(t, "https://example.com/foxconn", items[0].Link)
	assert.Equal(t, "Reuters", items[0].Publisher)
	assert.Equal(t, time.Unix(1727874300, 0).UTC(), *items[0].PublishedAt)

	assert.Equal(t, "No timestamp", items[1].Title)
	assert.Equal(t, true, items[1].PublishedAt == nil)
}
