package models

import "time"

// MSourceStatus reports how one quote provider has been behaving.
type MSourceStatus struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Enabled     bool      `json:"enabled"`
	LastAttempt time.Time `json:"last_attempt"`
	LastSuccess time.Time `json:"last_success"`
	LastQuotes  int       `json:"last_quotes"`
	LastReason  string    `json:"last_reason,omitempty"`
	Failures    int       `json:"failures"`
}
