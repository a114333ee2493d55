package chrono

import (
	"context"
	"fmt"
	"gsapp-backend/internal/components/telemetry"
	"time"

	"github.com/robfig/cron/v3"
)

const report_cron_job = "job"

// Scheduler runs jobs on standard 5-field cron specs.
type Scheduler interface {
	Schedule(spec string, job func()) error
}

// CronScheduler evaluates specs in Europe/Berlin. A job that is still running
// when its next run is due skips that run, a panicking job is reported and
// does not stop the scheduler.
type CronScheduler struct {
	cron *cron.Cron
}

// NewCronScheduler starts an empty scheduler, call Stop to halt it.
func NewCronScheduler(tel telemetry.API) CronScheduler {
	logger := cronLogger{tel: telemetry.NewScopedAPI("cron", tel)}
	scheduler := cron.New(
		cron.WithLogger(logger),
		cron.WithLocation(berlin),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)
	scheduler.Start()

	return CronScheduler{cron: scheduler}
}

func (s CronScheduler) Schedule(spec string, job func()) error {
	_, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("cron spec %q: %w", spec, err)
	}
	return nil
}

// Next returns the earliest upcoming run of any job, the zero time when
// nothing is scheduled.
func (s CronScheduler) Next() time.Time {
	var next time.Time
	for _, entry := range s.cron.Entries() {
		if next.IsZero() || entry.Next.Before(next) {
			next = entry.Next
		}
	}
	return next
}

// Stop halts the scheduler. The returned context is done once running jobs
// have returned.
func (s CronScheduler) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogger forwards the scheduler's log lines to telemetry.
type cronLogger struct {
	tel telemetry.API
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	params := append([]any{fmt.Errorf("%s: %w", msg, err)}, keysAndValues...)
	l.tel.ReportBroken(report_cron_job, params...)
}
