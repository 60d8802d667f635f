package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

type PrefsSQLite struct {
	db *sql.DB
}

func NewPrefsSQLite(db *sql.DB) *PrefsSQLite {
	return &PrefsSQLite{db: db}
}

const (
	selectPrefSQL = `SELECT value FROM preferences WHERE namespace=? AND key=?`

	upsertPrefSQL = `
		INSERT INTO preferences (namespace, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value=excluded.value
	`
)

// GetString returns the stored value or def when the key is absent or the
// read fails. The read-with-default contract keeps callers free of error
// handling, matching the firmware Preferences API this replaces.
func (r *PrefsSQLite) GetString(ctx context.Context, namespace, key, def string) string {
	var value string
	err := r.db.QueryRowContext(ctx, selectPrefSQL, namespace, key).Scan(&value)
	if err != nil {
		return def
	}
	return value
}

// PutString upserts the value under (namespace, key).
func (r *PrefsSQLite) PutString(ctx context.Context, namespace, key, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertPrefSQL, namespace, key, value); err != nil {
		return fmt.Errorf("put %s/%s: %w", namespace, key, err)
	}
	return nil
}

// GetInt returns the stored value parsed as an integer, or def when the key
// is absent, unreadable, or not a number.
func (r *PrefsSQLite) GetInt(ctx context.Context, namespace, key string, def int) int {
	var value string
	err := r.db.QueryRowContext(ctx, selectPrefSQL, namespace, key).Scan(&value)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

// PutInt upserts the integer value under (namespace, key).
func (r *PrefsSQLite) PutInt(ctx context.Context, namespace, key string, value int) error {
	return r.PutString(ctx, namespace, key, strconv.Itoa(value))
}
