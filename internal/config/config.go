// Package config holds the configuration of the gsapp command.
package config

import (
	"errors"
	"gsapp-backend/internal/cache"
	"gsapp-backend/internal/components/telemetry"
	"gsapp-backend/internal/scrapers/gsweb"
	"gsapp-backend/pkg/configutil"
	"os"
	"path/filepath"

	"dario.cat/mergo"
)

const DefaultPath = "config.json5"

// DefaultWatchCron refreshes every 15 minutes during school hours.
const DefaultWatchCron = "*/15 6-16 * * 1-5"

type HttpConfig struct {
	// RequestsPerSecond limits requests against the website, a negative
	// value disables the limit.
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type WatchConfig struct {
	Cron string `json:"cron"`
}

type Config struct {
	Cache     cache.Config     `json:"cache"`
	Http      HttpConfig       `json:"http"`
	Watch     WatchConfig      `json:"watch"`
	Endpoints gsweb.Endpoints  `json:"endpoints"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".cache", "gsapp")
	}
	return filepath.Join(dir, "gsapp")
}

func Default() Config {
	return Config{
		Cache: cache.Config{
			Backend: cache.BackendDir,
			Dir:     defaultCacheDir(),
		},
		Http: HttpConfig{
			RequestsPerSecond: 2,
		},
		Watch: WatchConfig{
			Cron: DefaultWatchCron,
		},
		Endpoints: gsweb.DefaultEndpoints,
	}
}

// Load reads the config file at path on top of Default. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	config := Default()

	fromFile, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return Config{}, err
	}

	err = mergo.Merge(&config, fromFile, mergo.WithOverride)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
