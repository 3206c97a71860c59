package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/go-playground/assert/v2"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	assert.Equal(t, nil, err)

	tickers, err := c.Tickers(context.Background())
	assert.Equal(t, nil, err)
	assert.Equal(t, true, len(tickers) > 10)
	assert.Equal(t, "AAPL", tickers[0].Symbol)

	tickers[0].Symbol = "MUTATED"
	again, _ := c.Tickers(context.Background())
	assert.Equal(t, "AAPL", again[0].Symbol)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
tickers:
  - symbol: " tsla"
    description: Tesla
  - symbol: ""
    description: blank
  - symbol: TSLA
    description: duplicate
  - symbol: nvda
    description: "  Nvidia  "
`))
	assert.Equal(t, nil, err)

	tickers, _ := c.Tickers(context.Background())
	assert.Equal(t, []model.Ticker{
		{Symbol: "TSLA", Description: "Tesla"},
		{Symbol: "NVDA", Description: "Nvidia"},
	}, tickers)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("tickers: []"))
	assert.Equal(t, true, errors.Is(err, ErrEmptyCatalog))

	_, err = Parse([]byte("tickers: [::"))
	assert.NotEqual(t, nil, err)
}

type fakeTickerStore struct {
	tickers []model.Ticker
	err     error
}

func (f *fakeTickerStore) ListTickers(ctx context.Context) ([]model.Ticker, error) {
	return f.tickers, f.err
}

func TestStore(t *testing.T) {
	s := NewStore(&fakeTickerStore{tickers: []model.Ticker{{Symbol: "amd", Description: "AMD"}}})
	tickers, err := s.Tickers(context.Background())
	assert.Equal(t, nil, err)
	assert.Equal(t, []model.Ticker{{Symbol: "AMD", Description: "AMD"}}, tickers)

	boom := errors.New("db down")
	_, err = NewStore(&fakeTickerStore{err: boom}).Tickers(context.Background())
	assert.Equal(t, true, errors.Is(err, boom))

	_, err = NewStore(&fakeTickerStore{}).Tickers(context.Background())
	assert.Equal(t, true, errors.Is(err, ErrEmptyCatalog))
}

type recordingWriter struct {
	written   []model.Ticker
	positions []int
	failOn    string
}

func (w *recordingWriter) UpsertTicker(ctx context.Context, t model.Ticker, position int) error {
	if t.Symbol == w.failOn {
		return errors.New("constraint violation")
	}
	w.written = append(w.written, t)
	w.positions = append(w.positions, position)
	return nil
}

func TestSeed(t *testing.T) {
	src, err := Parse([]byte(`
tickers:
  - symbol: msft
    description: Microsoft
  - symbol: goog
    description: Alphabet
`))
	assert.Equal(t, nil, err)

	w := &recordingWriter{}
	n, err := Seed(context.Background(), w, src)

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []model.Ticker{
		{Symbol: "MSFT", Description: "Microsoft"},
		{Symbol: "GOOG", Description: "Alphabet"},
	}, w.written)
	assert.Equal(t, []int{0, 1}, w.positions)
}

func TestSeed_StopsAtFirstFailure(t *testing.T) {
	src, _ := Parse([]byte("tickers: [{symbol: A}, {symbol: B}, {symbol: C}]"))

	w := &recordingWriter{failOn: "B"}
	n, err := Seed(context.Background(), w, src)

	assert.NotEqual(t, nil, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, len(w.written))
}

func TestSeed_SourceError(t *testing.T) {
	n, err := Seed(context.Background(), &recordingWriter{}, NewStore(&fakeTickerStore{}))

	assert.Equal(t, true, errors.Is(err, ErrEmptyCatalog))
	assert.Equal(t, 0, n)
}
