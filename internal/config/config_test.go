package config

import (
	"gsapp-backend/internal/cache"
	"gsapp-backend/internal/scrapers/gsweb"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	require.Equal(t, Default(), config)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	err := os.WriteFile(path, []byte(`{
		// sqlite keeps the cache in a single file
		cache: {
			backend: "sqlite",
			sqlite: { file: "gsapp.db" },
		},
		watch: { cron: "0 7 * * 1-5" },
	}`), 0644)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		http: { requests_per_second: 0.5 },
	}`), 0644)
	require.NoError(t, err)

	config, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, cache.BackendSqlite, config.Cache.Backend)
	require.Equal(t, "gsapp.db", config.Cache.Sqlite.File)
	require.Equal(t, Default().Cache.Dir, config.Cache.Dir)
	require.Equal(t, "0 7 * * 1-5", config.Watch.Cron)
	require.Equal(t, 0.5, config.Http.RequestsPerSecond)
	require.Equal(t, gsweb.DefaultEndpoints, config.Endpoints)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	require.NoError(t, os.WriteFile(path, []byte("{cache: "), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
