package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sort"
	"time"

	"github.com/hpungsan/linkgrab/internal/errors"
)

// KV is a key/value store over the session_state table.
type KV struct {
	db *sql.DB
}

// NewKV wraps an initialized database.
func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

// Get returns the value for key and whether it exists.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := kv.db.QueryRowContext(ctx, "SELECT value FROM session_state WHERE key = ?", key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	return value, true, nil
}

// Set upserts a single key.
func (kv *KV) Set(ctx context.Context, key, value string) error {
	if err := upsert(ctx, kv.db, key, value, time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// SetMany upserts all entries in one transaction.
func (kv *KV) SetMany(ctx context.Context, entries map[string]string) error {
	tx, err := kv.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	// Stable write order keeps lock acquisition deterministic
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now().Unix()
	for _, k := range keys {
		if err := upsert(ctx, tx, k, entries[k], now); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Remove deletes a key. Removing a missing key is not an error.
func (kv *KV) Remove(ctx context.Context, key string) error {
	if _, err := kv.db.ExecContext(ctx, "DELETE FROM session_state WHERE key = ?", key); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Clear deletes every key.
func (kv *KV) Clear(ctx context.Context) error {
	if _, err := kv.db.ExecContext(ctx, "DELETE FROM session_state"); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Keys returns all stored keys in ascending order.
func (kv *KV) Keys(ctx context.Context) ([]string, error) {
	rows, err := kv.db.QueryContext(ctx, "SELECT key FROM session_state ORDER BY key")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errors.NewInternal(err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return keys, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, ex execer, key, value string, now int64) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO session_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, now)
	return err
}
