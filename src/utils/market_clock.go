package utils

import (
	"sync"
	"time"

	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
)

// MarketClock reports whether any exchange listing a tracked symbol is open.
type MarketClock struct {
	Calendars map[string]*TradingCalendar // by MIC
	Logger    *logger.Logger
	Now       func() time.Time
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketClock(symbols []models.MSymbol, l *logger.Logger) *MarketClock {
	mc := &MarketClock{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
		Now:       time.Now,
	}
	mc.UpdateSymbols(symbols)
	return mc
}

// -----------------------------------------------------------------------------

// UpdateSymbols rebuilds the calendar set for a new symbol list
func (mc *MarketClock) UpdateSymbols(symbols []models.MSymbol) {
	calendars := make(map[string]*TradingCalendar)
	for _, sym := range symbols {
		mic := MICFor(sym.Ticker)
		if _, ok := calendars[mic]; ok {
			continue
		}
		cal := GetCalendar(mic)
		if cal.Fallback && mc.Logger != nil {
			mc.Logger.Warning("No calendar for %s, using Mon-Fri 09:30-16:00 New York hours", mic)
		}
		calendars[mic] = cal
	}

	mc.mu.Lock()
	mc.Calendars = calendars
	mc.mu.Unlock()

	if mc.Logger != nil {
		mc.Logger.Info("MarketClock: Mapped %d symbols to %d calendars.", len(symbols), len(calendars))
	}
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if ANY tracked market is currently open
func (mc *MarketClock) AnyMarketOpen() bool {
	return mc.AnyMarketOpenAt(mc.Now())
}

// -----------------------------------------------------------------------------

// AnyMarketOpenAt checks if ANY tracked market is open at t
func (mc *MarketClock) AnyMarketOpenAt(t time.Time) bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	for _, cal := range mc.Calendars {
		if cal.IsOpenAt(t) {
			return true
		}
	}
	return false
}
