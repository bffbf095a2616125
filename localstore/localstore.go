package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const shippingKey = "shipping"

// Store persists checkout autofill on the local machine so a returning
// shopper does not retype a shipping address. It is an optional convenience:
// callers treat every failure as a cache miss, never as a checkout blocker.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("empty autofill db path")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open autofill db: %w", err)
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS autofill (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init autofill schema: %w", err)
	}

	return &Store{db: db}, nil
}

// LoadShipping returns the saved shipping fields, or nil when none are saved.
func (s *Store) LoadShipping(ctx context.Context) (map[string]any, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM autofill WHERE key = ?`, shippingKey,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load shipping: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(value, &fields); err != nil {
		return nil, fmt.Errorf("decode shipping: %w", err)
	}
	return fields, nil
}

// SaveShipping upserts the shipping fields captured at checkout.
func (s *Store) SaveShipping(ctx context.Context, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	value, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode shipping: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO autofill(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`, shippingKey, value)
	if err != nil {
		return fmt.Errorf("save shipping: %w", err)
	}
	return nil
}

// Clear drops all saved autofill, for logout on a shared machine.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM autofill`); err != nil {
		return fmt.Errorf("clear autofill: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
