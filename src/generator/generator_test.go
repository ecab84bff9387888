package generator

import (
	"testing"
	"time"

	"stock-dashboard/src/models"
	"stock-dashboard/src/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func TestGenerateQuoteAlwaysPositive(t *testing.T) {
	g := New(WithSeed(1))
	symbols := append(DefaultSymbols(), models.MSymbol{Ticker: "ZZZZ", Name: "Unknown Corp"})

	for i := 0; i < 200; i++ {
		for _, sym := range symbols {
			q := g.GenerateQuote(sym)
			require.True(t, q.Price.IsPositive(), "price for %s must be > 0", sym.Ticker)
			assert.Equal(t, sym.Ticker, q.Symbol)
			assert.Equal(t, sym.Name, q.Name)
		}
	}
}

func TestGenerateQuoteChangeMatchesPreviousClose(t *testing.T) {
	g := New(WithSeed(7))
	tolerance := decimal.RequireFromString("0.011")

	for _, sym := range DefaultSymbols() {
		q := g.GenerateQuote(sym)
		diff := q.Price.Sub(q.PreviousClose).Sub(q.Change).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance), "%s: change drifted by %s", sym.Ticker, diff)
		assert.True(t, q.Change.Abs().LessThanOrEqual(decimal.NewFromInt(5)))
		assert.Equal(t, MarketCap(sym.Ticker), q.MarketCap)

		vol := utils.ParseVolume(q.Volume)
		assert.GreaterOrEqual(t, vol, int64(1_000_000))
		assert.Less(t, vol, int64(11_000_000))
	}
}

func TestUnknownTickerDefaults(t *testing.T) {
	assert.Equal(t, DefaultBasePrice, BasePrice("ZZZZ"))
	assert.Equal(t, "--", MarketCap("ZZZZ"))

	q := New(WithSeed(3)).GenerateQuote(models.MSymbol{Ticker: "ZZZZ"})
	assert.Equal(t, "100.00", q.PreviousClose.StringFixed(2))
}

func TestGenerateHistoryShape(t *testing.T) {
	g := New(WithSeed(42), WithClock(func() time.Time { return fixedNow }))

	for _, days := range []int{0, 1, 30, 90, 365} {
		for _, sym := range DefaultSymbols() {
			series := g.GenerateHistory(sym.Ticker, days)
			require.Len(t, series, days+1)
			assert.Equal(t, "2024-03-15", series[len(series)-1].Date)

			floor := decimal.NewFromFloat(BasePrice(sym.Ticker)).Mul(decimal.RequireFromString("0.7"))
			for i, p := range series {
				assert.True(t, p.Price.GreaterThanOrEqual(floor), "%s day %d: %s below floor %s", sym.Ticker, i, p.Price, floor)
				if i > 0 {
					assert.Less(t, series[i-1].Date, p.Date)
				}
			}
		}
	}
}

func TestGenerateHistoryNegativeDays(t *testing.T) {
	g := New(WithSeed(5), WithClock(func() time.Time { return fixedNow }))
	assert.Len(t, g.GenerateHistory("AAPL", -3), 1)
}

func TestGenerateHistoryFirstDate(t *testing.T) {
	g := New(WithSeed(5), WithClock(func() time.Time { return fixedNow }))
	series := g.GenerateHistory("MSFT", 30)
	assert.Equal(t, "2024-02-14", series[0].Date)
}

func TestGenerateMarketSummary(t *testing.T) {
	s := New(WithSeed(9)).GenerateMarketSummary()
	require.Len(t, s.Indices, 3)
	assert.Equal(t, "S&P 500", s.Indices[0].Name)
	assert.Equal(t, "NASDAQ", s.Indices[1].Name)
	assert.Equal(t, "DOW", s.Indices[2].Name)

	sp := decimal.RequireFromString(s.Indices[0].Value)
	assert.True(t, sp.GreaterThanOrEqual(decimal.NewFromInt(4770)) && sp.LessThanOrEqual(decimal.NewFromInt(4790)))

	total := utils.ParseVolume(s.TotalVolume)
	assert.GreaterOrEqual(t, total, int64(10_000_000_000))
}

func TestGenerateQuotesKeepsOrder(t *testing.T) {
	quotes := New(WithSeed(11)).GenerateQuotes(DefaultSymbols())
	require.Len(t, quotes, 7)
	for i, sym := range DefaultSymbols() {
		assert.Equal(t, sym.Ticker, quotes[i].Symbol)
	}
}
