package models

import "time"

// Refresh triggers.
const (
	TriggerStartup = "startup"
	TriggerTimer   = "timer"
	TriggerManual  = "manual"
)

// MRefreshResult records the outcome of one refresh cycle.
type MRefreshResult struct {
	ID         uint64        `json:"id"`
	Trigger    string        `json:"trigger"`
	Source     string        `json:"source"`
	Symbols    int           `json:"symbols"`
	Fallback   bool          `json:"fallback"`
	Reason     string        `json:"reason,omitempty"`
	Stale      bool          `json:"stale"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration_ns"`
}

// Installed reports whether the refresh replaced the current snapshot.
func (r MRefreshResult) Installed() bool {
	return !r.Stale && r.Error == ""
}
