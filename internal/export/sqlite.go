package export

import (
	"database/sql"
	"fmt"
	"sync"

	"StockFetch/internal/model"

	_ "modernc.org/sqlite"
)

// Writer persists a fetched series to an export target. The tool only ever
// writes exports; nothing reads them back.
type Writer interface {
	WriteSeries(q model.Query, s model.PriceSeries) error
	Close() error
}

// NoopWriter is used when no export target is configured.
type NoopWriter struct{}

func NewNoopWriter() *NoopWriter { return &NoopWriter{} }

func (n *NoopWriter) WriteSeries(model.Query, model.PriceSeries) error { return nil }
func (n *NoopWriter) Close() error                                     { return nil }

// SQLiteWriter writes price rows into a user-named SQLite file, an export
// artifact like a CSV.
type SQLiteWriter struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteWriter opens (or creates) the database and runs migrations.
func NewSQLiteWriter(dbPath string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	w := &SQLiteWriter{db: db}
	if err := w.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return w, nil
}

func (w *SQLiteWriter) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_history (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			close  REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_date ON price_history(date)`,
	}
	for _, s := range stmts {
		if _, err := w.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:32], err)
		}
	}
	return nil
}

// WriteSeries upserts every row of the series in one transaction.
func (w *SQLiteWriter) WriteSeries(q model.Query, s model.PriceSeries) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO price_history (symbol, date, close) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range s {
		c, _ := p.Close.Float64()
		if _, err := stmt.Exec(q.Symbol, p.Date, c); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s %s: %w", q.Symbol, p.Date, err)
		}
	}
	return tx.Commit()
}

func (w *SQLiteWriter) Close() error { return w.db.Close() }
