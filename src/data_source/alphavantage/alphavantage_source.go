package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"stock-dashboard/src/generator"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
	"stock-dashboard/src/utils"

	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co/query"
	DefaultAPIKey  = "demo"
)

type AlphaVantageSource struct {
	Config       *models.MConfig
	SourceConfig models.MSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger

	// Pause is slept before each per-symbol request.
	Pause time.Duration
}

// -----------------------------------------------------------------------------

func NewAlphaVantageSource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager) *AlphaVantageSource {
	return &AlphaVantageSource{
		Config:       cfg,
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       logger.NewLogger(nil, "AlphaVantageSource-"+sourceCfg.Name),
		Pause:        10 * time.Millisecond,
	}
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) baseURL() string {
	if s.SourceConfig.BaseURL != "" {
		return s.SourceConfig.BaseURL
	}
	return DefaultBaseURL
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) apiKey() string {
	if s.SourceConfig.APIKey != "" {
		return s.SourceConfig.APIKey
	}
	return DefaultAPIKey
}

// -----------------------------------------------------------------------------

// FetchQuotes probes the provider with the first symbol, then fetches the
// rest concurrently. The probe decides whether the provider is usable at all.
func (s *AlphaVantageSource) FetchQuotes(ctx context.Context, symbols []models.MSymbol) (quotes []models.MQuote, err error) {
	defer func() {
		if r := recover(); r != nil {
			quotes = nil
			err = helpers.NewFallback(s.Name(), helpers.ReasonPanic, helpers.PanicError(r))
		}
	}()

	if len(symbols) == 0 {
		return nil, helpers.NewFallback(s.Name(), helpers.ReasonEmpty, fmt.Errorf("no symbols to fetch"))
	}

	probe, err := s.fetchSymbol(ctx, symbols[0])
	if err != nil {
		s.Logger.Info("Probe for %s unusable: %v", symbols[0].Ticker, err)
		return nil, helpers.NewFallback(s.Name(), "", err)
	}

	results := s.fetchBatch(ctx, symbols[1:])
	results[probe.Symbol] = probe

	quotes = make([]models.MQuote, 0, len(results))
	for _, sym := range symbols {
		if q, ok := results[sym.Ticker]; ok {
			quotes = append(quotes, q)
		}
	}

	s.Logger.Info("AlphaVantage: Fetched %d/%d symbols successfully", len(quotes), len(symbols))
	return quotes, nil
}

// -----------------------------------------------------------------------------

// fetchBatch processes symbols concurrently. Failed symbols are dropped.
func (s *AlphaVantageSource) fetchBatch(ctx context.Context, symbols []models.MSymbol) map[string]models.MQuote {
	results := make(map[string]models.MQuote, len(symbols))
	if len(symbols) == 0 {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	limit := s.Config.Network.ConcurrentRequests
	if limit <= 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(sym models.MSymbol) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.Logger.Error("Panic fetching symbol %s: %v", sym.Ticker, r)
				}
			}()
			sem <- struct{}{}
			defer func() { <-sem }()

			if s.Pause > 0 {
				time.Sleep(s.Pause)
			}

			q, err := s.fetchSymbol(ctx, sym)
			if err != nil {
				s.Logger.Info("Error fetching symbol %s: %v", sym.Ticker, err)
				return
			}

			mu.Lock()
			results[sym.Ticker] = q
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	return results
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) fetchSymbol(ctx context.Context, sym models.MSymbol) (models.MQuote, error) {
	params := map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   sym.Ticker,
		"apikey":   s.apiKey(),
	}

	body, err := s.Network.Get(ctx, s.baseURL(), params)
	if err != nil {
		return models.MQuote{}, fmt.Errorf("network error for %s: %w", sym.Ticker, err)
	}

	fields, err := ParseGlobalQuote(body)
	if err != nil {
		return models.MQuote{}, err
	}
	return QuoteFromFields(sym, fields)
}

// -----------------------------------------------------------------------------

type globalQuoteResponse struct {
	Note         string            `json:"Note"`
	Information  string            `json:"Information"`
	ErrorMessage string            `json:"Error Message"`
	GlobalQuote  map[string]string `json:"Global Quote"`
}

// ParseGlobalQuote classifies a GLOBAL_QUOTE payload. Notices come back as
// a *helpers.FallbackError with the matching reason.
func ParseGlobalQuote(data []byte) (map[string]string, error) {
	var resp globalQuoteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewFallback("alphavantage", helpers.ReasonMalformed, fmt.Errorf("json unmarshal failed: %w", err))
	}

	switch {
	case resp.Note != "":
		return nil, helpers.NewFallback("alphavantage", helpers.ReasonRateLimited, fmt.Errorf("%s", resp.Note))
	case resp.Information != "":
		return nil, helpers.NewFallback("alphavantage", helpers.ReasonInformational, fmt.Errorf("%s", resp.Information))
	case resp.ErrorMessage != "":
		return nil, helpers.NewFallback("alphavantage", helpers.ReasonMalformed, fmt.Errorf("%s", resp.ErrorMessage))
	case resp.GlobalQuote == nil:
		return nil, helpers.NewFallback("alphavantage", helpers.ReasonMalformed, fmt.Errorf("missing Global Quote section"))
	}
	return resp.GlobalQuote, nil
}

// -----------------------------------------------------------------------------

// QuoteFromFields maps the numbered Global Quote fields onto a quote.
func QuoteFromFields(sym models.MSymbol, fields map[string]string) (models.MQuote, error) {
	if _, ok := fields["05. price"]; !ok {
		return models.MQuote{}, helpers.NewValidationError("%s: missing 05. price", sym.Ticker)
	}

	num := func(key string) (decimal.Decimal, error) {
		raw, ok := fields[key]
		if !ok {
			return decimal.Zero, helpers.NewValidationError("%s: missing %s", sym.Ticker, key)
		}
		d, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
		if err != nil {
			return decimal.Zero, helpers.NewValidationError("%s: bad %s %q", sym.Ticker, key, raw)
		}
		return d.Round(2), nil
	}

	var q models.MQuote
	var err error
	targets := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"02. open", &q.Open},
		{"03. high", &q.High},
		{"04. low", &q.Low},
		{"05. price", &q.Price},
		{"08. previous close", &q.PreviousClose},
		{"09. change", &q.Change},
		{"10. change percent", &q.ChangePercent},
	}
	for _, t := range targets {
		if *t.dst, err = num(t.key); err != nil {
			return models.MQuote{}, err
		}
	}

	volume, err := num("06. volume")
	if err != nil {
		return models.MQuote{}, err
	}

	q.Symbol = sym.Ticker
	q.Name = sym.Name
	q.Volume = utils.FormatVolume(volume.IntPart())
	q.MarketCap = generator.MarketCap(sym.Ticker)
	return q, nil
}
