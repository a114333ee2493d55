package commands

import (
	"context"
	"fmt"
	"gsapp-backend/cmd/gsapp/globals"
	"gsapp-backend/internal/cache"
	"gsapp-backend/internal/components/telemetry"
	"gsapp-backend/internal/config"
	"gsapp-backend/internal/fetcher"
	"gsapp-backend/internal/repository"
	"gsapp-backend/internal/scrapers/gsweb"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
)

// closers run after the command finished, in reverse order.
var closers []func(ctx context.Context) error

var rootCmd = &cobra.Command{
	Use:   "gsapp",
	Short: "gsapp shows the substitution plan, staff directory and cafeteria menu of the Gymnasium Sonneberg.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		cfg, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		otel, err := telemetry.Setup(cmd.Context(), "gsapp", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		closers = append(closers, otel.Shutdown)

		tel := telemetry.NewSlogAPI()

		store, err := cache.Open(cmd.Context(), cfg.Cache)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		closers = append(closers, func(context.Context) error {
			return store.Close()
		})

		client := fetcher.NewClient(fetcher.Options{
			RequestsPerSecond: cfg.Http.RequestsPerSecond,
		}, tel)
		source := gsweb.NewSource(client, cfg.Endpoints, tel)
		repo := repository.New(source, store, tel)

		slog.Debug("configured", "cache", cfg.Cache.Backend, "dir", cfg.Cache.Dir)

		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
			Config:     cfg,
			Tel:        tel,
			Store:      store,
			Repository: repo,
		}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdown()
	},
}

func shutdown() {
	for i := len(closers) - 1; i >= 0; i-- {
		err := closers[i](context.Background())
		if err != nil {
			slog.Warn("shutdown", "err", err)
		}
	}
	closers = nil
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", config.DefaultPath, "The json5 config file, a <name>.local.json5 next to it overrides it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		shutdown()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
