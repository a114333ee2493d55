package cache

import (
	"context"
	"fmt"
	"gsapp-backend/internal/components/chrono"
	"path/filepath"
)

const (
	BackendDir    = "dir"
	BackendSqlite = "sqlite"
)

type Config struct {
	// Backend is BackendDir or BackendSqlite, empty means BackendDir.
	Backend string       `json:"backend"`
	Dir     string       `json:"dir"`
	Sqlite  SqliteConfig `json:"sqlite"`
}

// Open returns the store selected by config.
func Open(ctx context.Context, config Config) (Store, error) {
	switch config.Backend {
	case "", BackendDir:
		return NewDirStore(config.Dir)
	case BackendSqlite:
		sqlite := config.Sqlite
		if sqlite.Url == "" && sqlite.File == "" && config.Dir != "" {
			sqlite.File = filepath.Join(config.Dir, "cache.db")
		}
		db, err := sqlite.OpenDB()
		if err != nil {
			return nil, fmt.Errorf("open cache database: %w", err)
		}
		store, err := NewSQLStore(ctx, db, chrono.NewStandardTime())
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", config.Backend)
	}
}
