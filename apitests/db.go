package apitests

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// dbResetter wipes the users table of a harness-owned service between tests.
// It opens the service's SQLite file directly; WAL journaling plus a busy
// timeout make that safe while the service holds its own connection.
type dbResetter struct {
	db *sql.DB
}

func openDBResetter(path string) (*dbResetter, error) {
	if path == "" {
		return nil, fmt.Errorf("no database path is known for this service")
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open service db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping service db: %w", err)
	}
	return &dbResetter{db: db}, nil
}

func (r *dbResetter) Reset() error {
	if _, err := r.db.Exec(`DELETE FROM users`); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}

func (r *dbResetter) Close() error {
	return r.db.Close()
}
