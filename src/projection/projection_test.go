package projection

import (
	"testing"
	"time"

	"stock-dashboard/src/generator"
	"stock-dashboard/src/models"
	"stock-dashboard/src/store"
	"stock-dashboard/src/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedHistory struct {
	prices []string
	asked  []int
}

func (f *fixedHistory) GenerateHistory(ticker string, days int) []models.MHistoryPoint {
	f.asked = append(f.asked, days)
	start := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
	points := make([]models.MHistoryPoint, 0, len(f.prices))
	for i, p := range f.prices {
		points = append(points, models.MHistoryPoint{
			Date:   start.AddDate(0, 0, i).Format("2006-01-02"),
			Price:  decimal.RequireFromString(p),
			Volume: int64(1000 * (i + 1)),
		})
	}
	return points
}

func (f *fixedHistory) GenerateMarketSummary() models.MMarketSummary {
	return models.MMarketSummary{TotalVolume: "10,000,000,000"}
}

type fixedClock bool

func (c fixedClock) AnyMarketOpen() bool { return bool(c) }

func seededState(t *testing.T) (*store.Store, store.State) {
	t.Helper()
	gen := generator.New(generator.WithSeed(3))
	st := store.New(nil, nil)
	st.ReplaceSnapshot(&models.MSnapshot{ID: 9, Source: "live:test", Quotes: gen.GenerateQuotes(generator.DefaultSymbols())})
	_, err := st.ToggleWatchlist("NVDA")
	require.NoError(t, err)
	_, err = st.ToggleWatchlist("AAPL")
	require.NoError(t, err)
	return st, st.State()
}

// -----------------------------------------------------------------------------

func TestProjectionsAreIdempotent(t *testing.T) {
	st, state := seededState(t)
	st.SetFilter("n")
	require.NoError(t, st.SetSort(store.SortPrice))
	state = st.State()

	assert.Equal(t, Cards(state), Cards(state))
	assert.Equal(t, Table(state), Table(state))
	assert.Equal(t, Watchlist(state), Watchlist(state))
	assert.Equal(t, Detail(state), Detail(state))
	assert.Equal(t, Cards(state), Cards(st.State()))
}

func TestCardsAndTableFollowViewSequence(t *testing.T) {
	st, _ := seededState(t)
	st.SetFilter("tesla")
	state := st.State()

	cards := Cards(state)
	require.Len(t, cards, 1)
	assert.Equal(t, "TSLA", cards[0].Ticker)
	assert.Equal(t, "$", cards[0].Price[:1])
	assert.False(t, cards[0].Watched)

	rows := Table(state)
	require.Len(t, rows, 1)
	assert.Equal(t, "789B", rows[0].MarketCap)
}

func TestCardFlags(t *testing.T) {
	_, state := seededState(t)
	cards := Cards(state)
	require.Len(t, cards, 7)
	assert.True(t, cards[0].Selected)
	assert.True(t, cards[0].Watched)
	assert.False(t, cards[1].Selected)
	for _, c := range cards {
		if c.Positive {
			assert.Equal(t, "+", c.Change[:1])
		} else {
			assert.Equal(t, "-", c.Change[:1])
		}
	}
}

func TestWatchlistIgnoresFilterAndKeepsSnapshotOrder(t *testing.T) {
	st, _ := seededState(t)
	st.SetFilter("zzz")
	require.NoError(t, st.SetSort(store.SortSymbol))

	view := Watchlist(st.State())
	assert.False(t, view.Empty)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "AAPL", view.Items[0].Ticker)
	assert.Equal(t, "NVDA", view.Items[1].Ticker)
	assert.Empty(t, Cards(st.State()))
}

func TestEmptyWatchlist(t *testing.T) {
	view := Watchlist(store.New(nil, nil).State())
	assert.True(t, view.Empty)
	assert.Equal(t, "No stocks in watchlist", view.Message)
	assert.Empty(t, view.Items)
}

func TestDetailPlaceholderWithoutSelection(t *testing.T) {
	st, _ := seededState(t)
	st.Select("NOPE")

	d := Detail(st.State())
	assert.True(t, d.Placeholder)
	for _, field := range []string{d.Price, d.Open, d.High, d.Low, d.Volume, d.MarketCap} {
		assert.Equal(t, utils.Placeholder, field)
	}

	chart := Chart(st.State(), &fixedHistory{}, "")
	assert.True(t, chart.Empty)
	assert.Empty(t, chart.Prices)
}

func TestDetailForSelection(t *testing.T) {
	_, state := seededState(t)
	d := Detail(state)
	q, _ := state.Selection()
	assert.False(t, d.Placeholder)
	assert.Equal(t, "AAPL", d.Ticker)
	assert.Equal(t, "$"+q.Open.StringFixed(2), d.Open)
	assert.Equal(t, "2.89T", d.MarketCap)
}

func TestChartTrendColourAndTimeframe(t *testing.T) {
	_, state := seededState(t)

	up := &fixedHistory{prices: []string{"100.00", "99.00", "100.00"}}
	chart := Chart(state, up, utils.TimeframeWeekly)
	assert.Equal(t, []int{90}, up.asked)
	assert.True(t, chart.Positive)
	assert.Equal(t, ColorPositive, chart.Color)
	assert.Equal(t, ColorPositive+"20", chart.Fill)
	assert.Equal(t, []string{"Jan 30", "Jan 31", "Feb 1"}, chart.Labels)
	assert.Equal(t, []float64{100, 99, 100}, chart.Prices)
	assert.Equal(t, "AAPL", chart.Ticker)

	down := &fixedHistory{prices: []string{"100.00", "101.00", "99.99"}}
	chart = Chart(state, down, "")
	assert.Equal(t, []int{30}, down.asked)
	assert.False(t, chart.Positive)
	assert.Equal(t, ColorNegative, chart.Color)
}

func TestChartThemeColours(t *testing.T) {
	st, _ := seededState(t)
	dark := Chart(st.State(), &fixedHistory{prices: []string{"1"}}, "")
	_, err := st.ToggleTheme()
	require.NoError(t, err)
	require.NoError(t, st.SetChartType(store.ChartBar))
	light := Chart(st.State(), &fixedHistory{prices: []string{"1"}}, "")

	assert.NotEqual(t, dark.TextColor, light.TextColor)
	assert.NotEqual(t, dark.GridColor, light.GridColor)
	assert.Equal(t, dark.Prices, light.Prices)
	assert.Equal(t, store.ChartBar, light.ChartType)
}

func TestChartRegeneratesEveryCall(t *testing.T) {
	_, state := seededState(t)
	gen := generator.New(generator.WithSeed(11))
	a := Chart(state, gen, utils.TimeframeYearly)
	b := Chart(state, gen, utils.TimeframeYearly)
	assert.Len(t, a.Prices, 366)
	assert.NotEqual(t, a.Prices, b.Prices)
}

func TestDashboard(t *testing.T) {
	_, state := seededState(t)
	view := Dashboard(state, &fixedHistory{prices: []string{"1", "2"}}, fixedClock(true))

	assert.Equal(t, uint64(9), view.SnapshotID)
	assert.Equal(t, "live:test", view.Source)
	assert.Equal(t, "AAPL", view.Selected)
	assert.Len(t, view.Cards, 7)
	assert.Len(t, view.Table, 7)
	assert.Len(t, view.Watchlist.Items, 2)
	assert.True(t, view.Summary.MarketOpen)
	assert.Equal(t, store.ThemeDark, view.Theme)
	assert.Equal(t, utils.TimeframeDaily, view.Timeframe)
	assert.True(t, view.Chart.Positive)
}
