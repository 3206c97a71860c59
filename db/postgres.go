package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

var DB *sql.DB

var ErrNoDatabaseURL = errors.New("DATABASE_URL is not set")

// Connect opens the Postgres pool holding the ticker catalog.
func Connect(connStr string) error {
	if connStr == "" {
		return ErrNoDatabaseURL
	}

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(5 * time.Minute)

	return DB.Ping()
}

func Close() {
	if DB != nil {
		DB.Close()
	}
}
