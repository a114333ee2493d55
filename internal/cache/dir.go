package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirStore keeps every kind in `<dir>/<kind>.json`.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (DirStore, error) {
	if dir == "" {
		return DirStore{}, fmt.Errorf("cache directory was not specified")
	}
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return DirStore{}, err
	}
	return DirStore{dir: dir}, nil
}

func (s DirStore) path(kind Kind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

func (s DirStore) Load(ctx context.Context, kind Kind, out any) error {
	data, err := os.ReadFile(s.path(kind))
	if errors.Is(err, fs.ErrNotExist) {
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

// Store writes to a temporary file next to the target and renames it over
// the target once it is synced.
func (s DirStore) Store(ctx context.Context, kind Kind, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+string(kind)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	_, err = tmp.Write(data)
	if err != nil {
		return cleanup(err)
	}
	err = tmp.Sync()
	if err != nil {
		return cleanup(err)
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	err = os.Rename(tmpPath, s.path(kind))
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func (s DirStore) Close() error {
	return nil
}
