package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed keys shared with the browser client's local storage.
const (
	KeyAccessToken = "access_token"
	KeySidebarOpen = "sidebarOpen"
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	// Several CLI invocations may touch the token at once.
	pragmas := []string{
		"PRAGMA busy_timeout=5000;",
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateKV(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateKV(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL,
		updated_at_unixms INTEGER NOT NULL
	);`)
	return err
}

// Get returns the value for key and whether it was present.
func (s Store) Get(ctx context.Context, key string) (string, bool, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s Store) Set(ctx context.Context, key, value string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`,
		key, value, time.Now().UTC().UnixMilli())
	return err
}

func (s Store) Delete(ctx context.Context, key string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, key)
	return err
}

// AccessToken returns the persisted bearer token, or "" when absent.
func (s Store) AccessToken(ctx context.Context) (string, error) {
	v, _, err := s.Get(ctx, KeyAccessToken)
	return strings.TrimSpace(v), err
}

func (s Store) SetAccessToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.ClearAccessToken(ctx)
	}
	return s.Set(ctx, KeyAccessToken, token)
}

func (s Store) ClearAccessToken(ctx context.Context) error {
	return s.Delete(ctx, KeyAccessToken)
}

// SidebarOpen defaults to true when never set.
func (s Store) SidebarOpen(ctx context.Context) (bool, error) {
	v, ok, err := s.Get(ctx, KeySidebarOpen)
	if err != nil || !ok {
		return true, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true, nil
	}
	return b, nil
}

func (s Store) SetSidebarOpen(ctx context.Context, open bool) error {
	return s.Set(ctx, KeySidebarOpen, strconv.FormatBool(open))
}

// Token lets the store serve as the API client's token source.
func (s Store) Token(ctx context.Context) (string, error) {
	return s.AccessToken(ctx)
}
