package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DefaultDBPath returns the path of the dashboard's state database.
func DefaultDBPath() string {
	return filepath.Join("data", "weather-dashboard.db")
}

const schema = `
	CREATE TABLE IF NOT EXISTS durable_state (
		namespace TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);
`

// SQLiteStore keeps durable state in a single SQLite table, one row per
// namespace.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating durable_state table: %w", err)
	}

	log.Printf("INFO: store: opened %s", path)
	return &SQLiteStore{db: db}, nil
}

// Load returns the payload saved under namespace.
func (s *SQLiteStore) Load(ctx context.Context, namespace string) ([]byte, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload,
		`SELECT payload FROM durable_state WHERE namespace = ?`, namespace)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", namespace, err)
	}
	return payload, nil
}

// Save upserts the payload for namespace.
func (s *SQLiteStore) Save(ctx context.Context, namespace string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO durable_state (namespace, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, namespace, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving %s: %w", namespace, err)
	}
	return nil
}

// Delete removes namespace. Deleting a missing namespace is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, namespace string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM durable_state WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("deleting %s: %w", namespace, err)
	}
	return nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
