package store

// Change kinds published to subscribers.
const (
	ChangeSnapshot  = "snapshot"
	ChangeSelection = "selection"
	ChangeWatchlist = "watchlist"
	ChangeFilter    = "filter"
	ChangeSort      = "sort"
	ChangeTheme     = "theme"
	ChangeTimeframe = "timeframe"
	ChangeViewMode  = "view_mode"
	ChangeChartType = "chart_type"
)

const subscriberBuffer = 16

// MChange tells a subscriber which part of the store changed.
type MChange struct {
	Kind string
}

// -----------------------------------------------------------------------------

// Subscribe returns a channel of change events and a func that closes it.
// Sends never block: a subscriber whose buffer is full misses the event.
func (s *Store) Subscribe() (<-chan MChange, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan MChange, subscriberBuffer)
	s.subscribers[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(c)
		}
	}
}

// -----------------------------------------------------------------------------

func (s *Store) publish(kind string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- MChange{Kind: kind}:
		default:
			s.Logger.Debug("Subscriber buffer full, dropped %s change", kind)
		}
	}
}
