package connection

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// PreferenceDB is the SQLite key/value table behind the persisted UI settings.
type PreferenceDB struct {
	DB *sql.DB
}

// OpenPreferences opens (creating if needed) the SQLite database at path.
// ":memory:" gives a private in-process database.
func OpenPreferences(path string) (*PreferenceDB, error) {
	if path == "" {
		return nil, fmt.Errorf("preferences db path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection so ":memory:" is a single database
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PreferenceDB{DB: db}, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (p *PreferenceDB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := p.DB.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (p *PreferenceDB) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.DB.ExecContext(ctx, `
INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value))
	return err
}

func (p *PreferenceDB) Close() error {
	return p.DB.Close()
}
