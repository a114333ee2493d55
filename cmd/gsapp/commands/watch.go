package commands

import (
	"context"
	"gsapp-backend/cmd/gsapp/globals"
	"gsapp-backend/cmd/gsapp/utils"
	"gsapp-backend/internal/components/chrono"
	"gsapp-backend/internal/repository"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// refreshTimeout bounds a single refresh cycle.
const refreshTimeout = 2 * time.Minute

func init() {
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(watchCmd)
}

func logSnapshot(snapshot repository.Snapshot) {
	slog.Info(
		"refreshed",
		"substitutions", len(snapshot.Substitutions.Value.Substitutions),
		"subjects", len(snapshot.Subjects.Value),
		"teachers", len(snapshot.Teachers.Value),
		"food_offers", len(snapshot.FoodPlan.Value),
	)
	if snapshot.Substitutions.Err != nil {
		slog.Info("substitution plan unavailable", "err", snapshot.Substitutions.Err)
	}
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refreshes the cache of every entity kind once.",
	Run: func(cmd *cobra.Command, args []string) {
		repo := globals.Get(cmd.Context()).Repository

		ctx, cancel := context.WithTimeout(cmd.Context(), refreshTimeout)
		defer cancel()

		snapshot, err := repo.RefreshAll(ctx)
		if err != nil {
			utils.Fatal("failed to refresh", err)
		}
		logSnapshot(snapshot)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refreshes the cache on the cron schedule from the config until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scheduler := chrono.NewCronScheduler(g.Tel)
		err := scheduler.Schedule(g.Config.Watch.Cron, func() {
			refreshCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
			defer cancel()

			snapshot, err := g.Repository.RefreshAll(refreshCtx)
			if err != nil {
				g.Tel.ReportWarning("watch", err)
				return
			}
			logSnapshot(snapshot)
		})
		if err != nil {
			utils.Fatal("invalid cron spec", err)
		}
		slog.Info("watching", "cron", g.Config.Watch.Cron, "next", scheduler.Next())

		<-ctx.Done()
		<-scheduler.Stop().Done()
	},
}
