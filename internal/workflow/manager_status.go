package workflow

import "sort"

// StatusSummary is a point-in-time view of the manager for status reporting.
type StatusSummary struct {
	Running   bool
	InFlight  int
	ActiveIDs []int64
	LastError string
}

// Status reports whether the manager is dispatching and which jobs are
// in flight.
func (m *Manager) Status() StatusSummary {
	m.mu.Lock()
	summary := StatusSummary{
		Running:  m.running,
		InFlight: m.inFlight,
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	m.mu.Unlock()

	summary.ActiveIDs = m.registry.ActiveIDs()
	sort.Slice(summary.ActiveIDs, func(i, j int) bool { return summary.ActiveIDs[i] < summary.ActiveIDs[j] })
	return summary
}
