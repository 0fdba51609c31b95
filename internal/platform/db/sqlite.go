package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS salary_records (
  employee_id TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  month TEXT NOT NULL,
  gross_salary_base REAL NOT NULL,
  seniority_rate REAL NOT NULL DEFAULT 0,
  years_experience INTEGER NOT NULL DEFAULT 0,
  days_vacation INTEGER NOT NULL DEFAULT 0,
  days_sick INTEGER NOT NULL DEFAULT 0,
  days_absence INTEGER NOT NULL DEFAULT 0,
  days_unpaid INTEGER NOT NULL DEFAULT 0,
  sick_leave_count INTEGER NOT NULL DEFAULT 1,
  month_ordinal INTEGER NOT NULL DEFAULT 0,
  updated_at TIMESTAMP NOT NULL,
  PRIMARY KEY (employee_id, month)
);
CREATE INDEX IF NOT EXISTS idx_salary_records_employee_ordinal ON salary_records (employee_id, month_ordinal);
`

// OpenSQLite opens (creating if needed) the embedded database file and applies the schema.
// Pass ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, err
		}
	}
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; also keeps a :memory: database on a single connection
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return conn, nil
}
