package telemetry

import (
	"fmt"
	"sync"
	"testing"
)

type Report struct {
	Kind   string
	Id     string
	Params []any
}

// TestAPI records every report and mirrors it to the test log.
type TestAPI struct {
	t       testing.TB
	mutex   sync.Mutex
	reports []Report
}

func NewTestAPI(t testing.TB) *TestAPI {
	return &TestAPI{t: t}
}

func (a *TestAPI) record(kind, id string, params []any) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.reports = append(a.reports, Report{Kind: kind, Id: id, Params: params})
	a.t.Log(fmt.Sprintf("[%s] %s", kind, id), params)
}

func (a *TestAPI) ReportBroken(id string, params ...any)  { a.record("broken", id, params) }
func (a *TestAPI) ReportWarning(id string, params ...any) { a.record("warning", id, params) }
func (a *TestAPI) ReportDebug(msg string, params ...any)  { a.record("debug", msg, params) }
func (a *TestAPI) ReportCount(id string, count int64)     { a.record("count", id, []any{count}) }

// Reports returns the recorded reports of the given kind.
func (a *TestAPI) Reports(kind string) []Report {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	var out []Report
	for _, r := range a.reports {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
