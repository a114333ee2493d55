package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"gsapp-backend/internal/components/chrono"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// SqliteConfig selects a local database file or a remote libsql database.
type SqliteConfig struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// OpenDB opens the remote database when Url is set, the local file otherwise.
func (config SqliteConfig) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		if !strings.HasPrefix(config.Url, "libsql://") && !strings.HasPrefix(config.Url, "https://") {
			return nil, fmt.Errorf("unsupported database url %q", config.Url)
		}

		var opts []libsql.Option
		if config.AuthToken != "" {
			opts = append(opts, libsql.WithAuthToken(config.AuthToken))
		}
		connector, err := libsql.NewConnector(config.Url, opts...)
		if err != nil {
			return nil, err
		}
		return sql.OpenDB(connector), nil
	}

	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	err := os.MkdirAll(filepath.Dir(config.File), 0755)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SQLStore keeps every kind as a row of the cache_blobs table.
type SQLStore struct {
	db    *sql.DB
	clock chrono.TimeAPI
}

// NewSQLStore creates the cache table if it is missing.
func NewSQLStore(ctx context.Context, db *sql.DB, clock chrono.TimeAPI) (SQLStore, error) {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return SQLStore{}, fmt.Errorf("create schema: %w", err)
	}
	return SQLStore{db: db, clock: clock}, nil
}

// UpdatedAt returns when the kind was last stored.
func (s SQLStore) UpdatedAt(ctx context.Context, kind Kind) (time.Time, error) {
	var updatedAt int64
	err := s.db.QueryRowContext(
		ctx,
		"select updated_at from cache_blobs where kind = ?",
		string(kind),
	).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, &NotFoundError{Kind: kind}
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(updatedAt, 0).In(chrono.Berlin()), nil
}

func (s SQLStore) Load(ctx context.Context, kind Kind, out any) error {
	var data []byte
	err := s.db.QueryRowContext(
		ctx,
		"select value from cache_blobs where kind = ?",
		string(kind),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Kind: kind}
	}
	if err != nil {
		return err
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return &DecodeError{Kind: kind, Err: err}
	}
	return nil
}

func (s SQLStore) Store(ctx context.Context, kind Kind, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`insert into cache_blobs (kind, value, updated_at) values (?, ?, ?)
		on conflict (kind) do update set value = excluded.value, updated_at = excluded.updated_at`,
		string(kind),
		data,
		s.clock.Now().Unix(),
	)
	return err
}

func (s SQLStore) Close() error {
	return s.db.Close()
}
