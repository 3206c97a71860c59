package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
)

type TickerRepository struct {
	db *sql.DB
}

func NewTickerRepository(db *sql.DB) *TickerRepository {
	return &TickerRepository{db: db}
}

// ListTickers returns the catalog in display order.
func (r *TickerRepository) ListTickers(ctx context.Context) ([]model.Ticker, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT symbol, description
		FROM ticker
		ORDER BY position, symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tickers: %w", err)
	}
	defer rows.Close()

	tickers := []model.Ticker{}
	for rows.Next() {
		var t model.Ticker
		var description sql.NullString
		if err := rows.Scan(&t.Symbol, &description); err != nil {
			return nil, fmt.Errorf("scanning ticker: %w", err)
		}
		t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
		t.Description = description.String
		tickers = append(tickers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tickers: %w", err)
	}
	return tickers, nil
}

// UpsertTicker inserts or updates one catalog row.
func (r *TickerRepository) UpsertTicker(ctx context.Context, t model.Ticker, position int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ticker(symbol, description, position)
		VALUES($1, $2, $3)
		ON CONFLICT (symbol) DO UPDATE SET description = EXCLUDED.description, position = EXCLUDED.position
	`, strings.ToUpper(strings.TrimSpace(t.Symbol)), t.Description, position)
	if err != nil {
		return fmt.Errorf("upserting ticker %s: %w", t.Symbol, err)
	}
	return nil
}
