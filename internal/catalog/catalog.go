package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed tickers.yaml
var defaultTickers []byte

var ErrEmptyCatalog = errors.New("ticker catalog is empty")

// Catalog is the ordered set of tickers a query may resolve to.
type Catalog interface {
	Tickers(ctx context.Context) ([]model.Ticker, error)
}

type TickerStore interface {
	ListTickers(ctx context.Context) ([]model.Ticker, error)
}

type TickerWriter interface {
	UpsertTicker(ctx context.Context, t model.Ticker, position int) error
}

type Static struct {
	tickers []model.Ticker
}

// Default returns the embedded catalog of major US tickers.
func Default() (*Static, error) {
	return Parse(defaultTickers)
}

// Parse reads a catalog document of the form `tickers: [{symbol, description}]`.
// Symbols are upper-cased and duplicates keep their first position.
func Parse(raw []byte) (*Static, error) {
	var doc struct {
		Tickers []model.Ticker `yaml:"tickers"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing ticker catalog: %w", err)
	}

	tickers := normalize(doc.Tickers)
	if len(tickers) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &Static{tickers: tickers}, nil
}

func (s *Static) Tickers(ctx context.Context) ([]model.Ticker, error) {
	out := make([]model.Ticker, len(s.tickers))
	copy(out, s.tickers)
	return out, nil
}

// Store serves the catalog from the database on every call.
type Store struct {
	store TickerStore
}

func NewStore(store TickerStore) *Store {
	return &Store{store: store}
}

func (s *Store) Tickers(ctx context.Context) ([]model.Ticker, error) {
	tickers, err := s.store.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ticker catalog: %w", err)
	}

	tickers = normalize(tickers)
	if len(tickers) == 0 {
		return nil, ErrEmptyCatalog
	}
	return tickers, nil
}

// Seed writes every ticker of src to dst, using its catalog order as position.
// It stops at the first failed write and reports how many were written.
func Seed(ctx context.Context, dst TickerWriter, src Catalog) (int, error) {
	tickers, err := src.Tickers(ctx)
	if err != nil {
		return 0, err
	}
	for i, t := range tickers {
		if err := dst.UpsertTicker(ctx, t, i); err != nil {
			return i, fmt.Errorf("seeding ticker catalog: %w", err)
		}
	}
	return len(tickers), nil
}

func normalize(in []model.Ticker) []model.Ticker {
	out := make([]model.Ticker, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		symbol := strings.ToUpper(strings.TrimSpace(t.Symbol))
		if symbol == "" {
			continue
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, model.Ticker{Symbol: symbol, Description: strings.TrimSpace(t.Description)})
	}
	return out
}
