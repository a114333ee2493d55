package chrono

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingAPI keeps the ids of broken reports. The scheduler keeps logging
// after Stop returns, so it must not log to the test.
type recordingAPI struct {
	mutex  sync.Mutex
	broken []string
}

func (a *recordingAPI) ReportBroken(id string, params ...any) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.broken = append(a.broken, id)
}

func (a *recordingAPI) ReportWarning(id string, params ...any) {}
func (a *recordingAPI) ReportDebug(msg string, params ...any) {}
func (a *recordingAPI) ReportCount(id string, count int64) {}

func (a *recordingAPI) brokenCount(id string) int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	count := 0
	for _, b := range a.broken {
		if strings.Contains(b, id) {
			count++
		}
	}
	return count
}

func TestCronSchedulerInvalidSpec(t *testing.T) {
	scheduler := NewCronScheduler(&recordingAPI{})
	defer scheduler.Stop()

	require.Error(t, scheduler.Schedule("every morning", func() {}))
	require.True(t, scheduler.Next().IsZero())
}

func TestCronSchedulerNext(t *testing.T) {
	scheduler := NewCronScheduler(&recordingAPI{})
	defer scheduler.Stop()

	before := time.Now()
	require.NoError(t, scheduler.Schedule("0 7 * * 1-5", func() {}))
	require.NoError(t, scheduler.Schedule("@every 1m", func() {}))

	next := scheduler.Next()
	require.True(t, next.After(before), "next run %s", next)
	require.True(t, next.Before(before.Add(2*time.Minute)), "next run %s", next)
	require.Equal(t, berlin, next.Location())
}

func TestCronSchedulerRecoversPanics(t *testing.T) {
	tel := &recordingAPI{}
	scheduler := NewCronScheduler(tel)

	ran := make(chan struct{}, 1)
	require.NoError(t, scheduler.Schedule("@every 1s", func() {
		select {
		case ran <- struct{}{}:
			panic("refresh failed")
		default:
		}
	}))

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
	<-scheduler.Stop().Done()

	require.Positive(t, tel.brokenCount(report_cron_job))
}
