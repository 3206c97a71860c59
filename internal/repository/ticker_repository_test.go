package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/go-playground/assert/v2"
)

func TestListTickers(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.Equal(t, nil, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"symbol", "description"}).
		AddRow("tsla ", "Tesla electric vehicles").
		AddRow("NVDA", nil)
	mock.ExpectQuery(`SELECT symbol, description\s+FROM ticker\s+ORDER BY position, symbol`).WillReturnRows(rows)

	repo := NewTickerRepository(db)
	got, err := repo.ListTickers(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, []model.Ticker{
		{Symbol: "TSLA", Description: "Tesla electric vehicles"},
		{Symbol: "NVDA", Description: ""},
	}, got)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestListTickers_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.Equal(t, nil, err)
	defer db.Close()

	boom := errors.New("connection refused")
	mock.ExpectQuery(`SELECT symbol, description`).WillReturnError(boom)

	got, err := NewTickerRepository(db).ListTickers(context.Background())

	assert.Equal(t, true, errors.Is(err, boom))
	assert.Equal(t, 0, len(got))
}

func TestListTickers_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.Equal(t, nil, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"symbol", "description"}).
		AddRow("AAPL", "Apple").
		RowError(0, errors.New("row broke"))
	mock.ExpectQuery(`SELECT symbol, description`).WillReturnRows(rows)

	_, err = NewTickerRepository(db).ListTickers(context.Background())

	assert.NotEqual(t, nil, err)
}

func TestUpsertTicker(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.Equal(t, nil, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO ticker\(symbol, description, position\)`).
		WithArgs("AMD", "Advanced Micro Devices", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewTickerRepository(db).UpsertTicker(context.Background(), model.Ticker{Symbol: " amd", Description: "Advanced Micro Devices"}, 7)

	assert.Equal(t, nil, err)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}
