package telemetry

import (
	"strings"
	"sync"
)

// Report is a single call recorded by MemoryAPI.
type Report struct {
	Kind   string
	ID     string
	Params []any
	Count  int64
}

// MemoryAPI records every report in memory, it is meant for asserting on
// telemetry in tests.
type MemoryAPI struct {
	mutex   sync.Mutex
	reports []Report
}

func (m *MemoryAPI) push(r Report) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.reports = append(m.reports, r)
}

func (m *MemoryAPI) ReportBroken(id string, params ...any) {
	m.push(Report{Kind: "broken", ID: id, Params: params})
}

func (m *MemoryAPI) ReportWarning(id string, params ...any) {
	m.push(Report{Kind: "warning", ID: id, Params: params})
}

func (m *MemoryAPI) ReportDebug(msg string, params ...any) {
	m.push(Report{Kind: "debug", ID: msg, Params: params})
}

func (m *MemoryAPI) ReportCount(id string, count int64) {
	m.push(Report{Kind: "count", ID: id, Count: count})
}

// Reports returns a copy of the reports of a given kind whose id ends with suffix.
// An empty kind matches every kind.
func (m *MemoryAPI) Reports(kind, suffix string) []Report {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var out []Report
	for _, r := range m.reports {
		if kind != "" && r.Kind != kind {
			continue
		}
		if !strings.HasSuffix(r.ID, suffix) {
			continue
		}
		out = append(out, r)
	}
	return out
}
