package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stock-dashboard/src/data_source/alpaca"
	"stock-dashboard/src/data_source/alphavantage"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
)

type sourceEntry struct {
	source interfaces.IQuoteSource
	kind   string
	status models.MSourceStatus
}

// MultiSourceManager tries its providers in priority order and returns the
// first usable batch. It is itself an IQuoteSource.
type MultiSourceManager struct {
	entries []*sourceEntry
	Logger  *logger.Logger
	mu      sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMultiSourceManager(sources []interfaces.IQuoteSource, log *logger.Logger) *MultiSourceManager {
	m := &MultiSourceManager{Logger: log}
	for _, s := range sources {
		if err := m.AddSource(s); err != nil {
			log.Warning("Skipping source: %v", err)
		}
	}
	return m
}

// -----------------------------------------------------------------------------

// NewSource builds the provider described by sourceCfg.
func NewSource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager) (interfaces.IQuoteSource, error) {
	switch sourceCfg.Type {
	case "alphavantage", "":
		return alphavantage.NewAlphaVantageSource(cfg, sourceCfg, netMgr), nil
	case "alpaca":
		return alpaca.NewAlpacaSource(sourceCfg), nil
	default:
		return nil, helpers.NewConfigurationError("unsupported source type %q for %s", sourceCfg.Type, sourceCfg.Name)
	}
}

// -----------------------------------------------------------------------------

// NewMultiSourceManagerFromConfig builds every configured provider.
func NewMultiSourceManagerFromConfig(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) (*MultiSourceManager, error) {
	m := &MultiSourceManager{Logger: log}
	for _, srcCfg := range cfg.DataSource.Sources {
		src, err := NewSource(cfg, srcCfg, netMgr)
		if err != nil {
			return nil, err
		}
		if err := m.AddSource(src); err != nil {
			return nil, err
		}
		if srcCfg.Disabled {
			_ = m.SetEnabled(srcCfg.Name, false)
		}
	}
	return m, nil
}

// -----------------------------------------------------------------------------

func sourceKind(source interfaces.IQuoteSource) string {
	switch source.(type) {
	case *alphavantage.AlphaVantageSource:
		return "alphavantage"
	case *alpaca.AlpacaSource:
		return "alpaca"
	default:
		return "custom"
	}
}

// -----------------------------------------------------------------------------

// AddSource appends a provider at the lowest priority.
func (m *MultiSourceManager) AddSource(source interfaces.IQuoteSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := source.Name()
	for _, e := range m.entries {
		if e.source.Name() == name {
			return fmt.Errorf("source %s already exists", name)
		}
	}

	kind := sourceKind(source)
	m.entries = append(m.entries, &sourceEntry{
		source: source,
		kind:   kind,
		status: models.MSourceStatus{Name: name, Type: kind, Enabled: true},
	})
	m.Logger.Info("Added source: %s (%s)", name, kind)
	return nil
}

// -----------------------------------------------------------------------------

// RemoveSource drops a provider by name
func (m *MultiSourceManager) RemoveSource(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.source.Name() == name {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			m.Logger.Info("Removed source: %s", name)
			return nil
		}
	}
	return fmt.Errorf("source %s not found", name)
}

// -----------------------------------------------------------------------------

// GetSource retrieves a source by name
func (m *MultiSourceManager) GetSource(name string) (interfaces.IQuoteSource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.source.Name() == name {
			return e.source, nil
		}
	}
	return nil, fmt.Errorf("source %s not found", name)
}

// -----------------------------------------------------------------------------

// SetEnabled toggles whether FetchQuotes consults the named provider.
func (m *MultiSourceManager) SetEnabled(name string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.source.Name() == name {
			e.status.Enabled = enabled
			m.Logger.Info("Source %s enabled=%t", name, enabled)
			return nil
		}
	}
	return fmt.Errorf("source %s not found", name)
}

// -----------------------------------------------------------------------------

// Statuses returns a copy of every provider's status, in priority order.
func (m *MultiSourceManager) Statuses() []models.MSourceStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]models.MSourceStatus, 0, len(m.entries))
	for _, e := range m.entries {
		list = append(list, e.status)
	}
	return list
}

// -----------------------------------------------------------------------------

// Name returns "MultiSourceManager"
func (m *MultiSourceManager) Name() string {
	return "MultiSourceManager"
}

// -----------------------------------------------------------------------------

// FetchQuotes returns the first usable batch. When every enabled provider
// fails, the error carries the last provider's reason.
func (m *MultiSourceManager) FetchQuotes(ctx context.Context, symbols []models.MSymbol) ([]models.MQuote, error) {
	quotes, _, err := m.FetchQuotesFrom(ctx, symbols)
	return quotes, err
}

// -----------------------------------------------------------------------------

// FetchQuotesFrom is FetchQuotes that also reports which provider answered.
func (m *MultiSourceManager) FetchQuotesFrom(ctx context.Context, symbols []models.MSymbol) ([]models.MQuote, string, error) {
	m.mu.RLock()
	entries := make([]*sourceEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.status.Enabled {
			entries = append(entries, e)
		}
	}
	m.mu.RUnlock()

	if len(entries) == 0 {
		return nil, "", helpers.NewFallback(m.Name(), helpers.ReasonNoSource, fmt.Errorf("no enabled sources"))
	}

	var lastErr *helpers.FallbackError
	for _, e := range entries {
		quotes, err := m.fetchOne(ctx, e.source, symbols)
		m.record(e, len(quotes), err)
		if err == nil {
			return quotes, e.source.Name(), nil
		}
		lastErr = helpers.NewFallback(e.source.Name(), "", err)
		m.Logger.Info("Source %s unusable (%s), trying next", e.source.Name(), lastErr.Reason)
	}
	return nil, "", lastErr
}

// -----------------------------------------------------------------------------

func (m *MultiSourceManager) fetchOne(ctx context.Context, source interfaces.IQuoteSource, symbols []models.MSymbol) (quotes []models.MQuote, err error) {
	defer func() {
		if r := recover(); r != nil {
			quotes = nil
			err = helpers.NewFallback(source.Name(), helpers.ReasonPanic, helpers.PanicError(r))
		}
	}()
	return source.FetchQuotes(ctx, symbols)
}

// -----------------------------------------------------------------------------

func (m *MultiSourceManager) record(e *sourceEntry, count int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.status.LastAttempt = time.Now()
	if err != nil {
		e.status.LastReason = helpers.ReasonOf(err)
		e.status.Failures++
		return
	}
	e.status.LastReason = ""
	e.status.LastSuccess = e.status.LastAttempt
	e.status.LastQuotes = count
}
