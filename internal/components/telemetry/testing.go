package telemetry

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

// Report is a single call recorded by TestingAPI.
type Report struct {
	Kind   string
	ID     string
	Params []any
}

// TestingAPI records every report and mirrors it to the test log.
type TestingAPI struct {
	t       testing.TB
	mutex   sync.Mutex
	reports []Report
}

func NewTestingAPI(t testing.TB) *TestingAPI {
	return &TestingAPI{t: t}
}

func (a *TestingAPI) record(kind, id string, params []any) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.reports = append(a.reports, Report{Kind: kind, ID: id, Params: params})
	a.t.Logf("[%s] %s %s", kind, id, fmt.Sprint(params...))
}

func (a *TestingAPI) ReportBroken(id string, params ...any) {
	a.record("broken", id, params)
}

func (a *TestingAPI) ReportWarning(id string, params ...any) {
	a.record("warning", id, params)
}

func (a *TestingAPI) ReportDebug(msg string, params ...any) {
	a.record("debug", msg, params)
}

func (a *TestingAPI) ReportCount(id string, count int64) {
	a.record("count", id, []any{count})
}

// Reports returns the recorded reports of the given kind whose id contains
// `id`. An empty kind matches every kind.
func (a *TestingAPI) Reports(kind, id string) []Report {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var out []Report
	for _, r := range a.reports {
		if kind != "" && r.Kind != kind {
			continue
		}
		if !strings.Contains(r.ID, id) {
			continue
		}
		out = append(out, r)
	}
	return out
}
