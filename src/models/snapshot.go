package models

import "time"

// Snapshot source labels.
const (
	SourceSynthetic  = "synthetic"
	SourceLivePrefix = "live:"
)

// -----------------------------------------------------------------------------

// MSnapshot is the complete set of quotes produced by one refresh cycle.
// It is never mutated after being handed to the store.
type MSnapshot struct {
	ID        uint64    `json:"id"`
	Source    string    `json:"source"`
	Quotes    []MQuote  `json:"quotes"`
	CreatedAt time.Time `json:"created_at"`
}

// -----------------------------------------------------------------------------

// Find returns the quote for ticker, if present.
func (s *MSnapshot) Find(ticker string) (MQuote, bool) {
	if s == nil {
		return MQuote{}, false
	}
	for _, q := range s.Quotes {
		if q.Symbol == ticker {
			return q, true
		}
	}
	return MQuote{}, false
}

// -----------------------------------------------------------------------------

// Len is nil-safe.
func (s *MSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Quotes)
}
