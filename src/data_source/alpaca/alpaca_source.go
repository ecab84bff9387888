package alpaca

import (
	"context"
	"fmt"

	"stock-dashboard/src/generator"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
	"stock-dashboard/src/utils"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// SnapshotClient is the slice of the marketdata client this source needs.
type SnapshotClient interface {
	GetSnapshots(symbols []string, req marketdata.GetSnapshotRequest) (map[string]*marketdata.Snapshot, error)
}

type AlpacaSource struct {
	SourceConfig models.MSourceConfig
	Client       SnapshotClient
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAlpacaSource(sourceCfg models.MSourceConfig) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    sourceCfg.APIKey,
		APISecret: sourceCfg.APISecret,
	}
	if sourceCfg.BaseURL != "" {
		opts.BaseURL = sourceCfg.BaseURL
	}

	return &AlpacaSource{
		SourceConfig: sourceCfg,
		Client:       marketdata.NewClient(opts),
		Logger:       logger.NewLogger(nil, "AlpacaSource-"+sourceCfg.Name),
	}
}

// -----------------------------------------------------------------------------

func (s *AlpacaSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

// FetchQuotes asks for all symbol snapshots in one call. The client call has
// no context parameter, so cancellation only applies before the request.
func (s *AlpacaSource) FetchQuotes(ctx context.Context, symbols []models.MSymbol) (quotes []models.MQuote, err error) {
	defer func() {
		if r := recover(); r != nil {
			quotes = nil
			err = helpers.NewFallback(s.Name(), helpers.ReasonPanic, helpers.PanicError(r))
		}
	}()

	if s.SourceConfig.APIKey == "" || s.SourceConfig.APISecret == "" {
		return nil, helpers.NewFallback(s.Name(), helpers.ReasonInformational, fmt.Errorf("alpaca credentials not configured"))
	}
	if len(symbols) == 0 {
		return nil, helpers.NewFallback(s.Name(), helpers.ReasonEmpty, fmt.Errorf("no symbols to fetch"))
	}
	if err := ctx.Err(); err != nil {
		return nil, helpers.NewFallback(s.Name(), helpers.ReasonTransport, err)
	}

	tickers := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		tickers = append(tickers, sym.Ticker)
	}

	req := marketdata.GetSnapshotRequest{}
	if s.SourceConfig.Feed != "" {
		req.Feed = marketdata.Feed(s.SourceConfig.Feed)
	}

	snapshots, err := s.Client.GetSnapshots(tickers, req)
	if err != nil {
		return nil, helpers.NewFallback(s.Name(), helpers.ReasonTransport, err)
	}

	quotes = make([]models.MQuote, 0, len(symbols))
	for _, sym := range symbols {
		q, ok := QuoteFromSnapshot(sym, snapshots[sym.Ticker])
		if !ok {
			s.Logger.Info("No usable snapshot for %s", sym.Ticker)
			continue
		}
		quotes = append(quotes, q)
	}

	if len(quotes) == 0 {
		return nil, helpers.NewFallback(s.Name(), "", helpers.NewDataSourceError(s.Name(), "no symbol returned a usable snapshot"))
	}

	s.Logger.Info("Alpaca: Fetched %d/%d symbols successfully", len(quotes), len(symbols))
	return quotes, nil
}

// -----------------------------------------------------------------------------

// QuoteFromSnapshot prefers the latest trade for price and the daily bars
// for the session numbers.
func QuoteFromSnapshot(sym models.MSymbol, snap *marketdata.Snapshot) (models.MQuote, bool) {
	if snap == nil {
		return models.MQuote{}, false
	}

	var price float64
	switch {
	case snap.LatestTrade != nil && snap.LatestTrade.Price > 0:
		price = snap.LatestTrade.Price
	case snap.DailyBar != nil && snap.DailyBar.Close > 0:
		price = snap.DailyBar.Close
	default:
		return models.MQuote{}, false
	}

	q := models.MQuote{
		Symbol:    sym.Ticker,
		Name:      sym.Name,
		Price:     utils.Round2(price),
		Open:      utils.Round2(price),
		High:      utils.Round2(price),
		Low:       utils.Round2(price),
		Volume:    utils.FormatVolume(0),
		MarketCap: generator.MarketCap(sym.Ticker),
	}

	if bar := snap.DailyBar; bar != nil {
		q.Open = utils.Round2(bar.Open)
		q.High = utils.Round2(bar.High)
		q.Low = utils.Round2(bar.Low)
		q.Volume = utils.FormatVolume(int64(bar.Volume))
	}

	prevClose := q.Open
	if prev := snap.PrevDailyBar; prev != nil && prev.Close > 0 {
		prevClose = utils.Round2(prev.Close)
	}
	q.PreviousClose = prevClose
	q.Change = q.Price.Sub(prevClose)
	if prevClose.IsPositive() {
		q.ChangePercent = q.Change.Div(prevClose).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return q, true
}
