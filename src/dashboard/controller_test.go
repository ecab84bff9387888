package dashboard

import (
	"context"
	"sync"
	"testing"

	"stock-dashboard/src/generator"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"
	"stock-dashboard/src/orchestrator"
	"stock-dashboard/src/store"
	"stock-dashboard/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toastSink struct {
	mu     sync.Mutex
	toasts []models.MToast
}

func (t *toastSink) Notify(toast models.MToast) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toasts = append(t.toasts, toast)
}

func (t *toastSink) last() models.MToast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.toasts[len(t.toasts)-1]
}

type closedClock struct{}

func (closedClock) AnyMarketOpen() bool { return false }

func newTestController(t *testing.T) (*Controller, *toastSink) {
	t.Helper()
	gen := generator.New(generator.WithSeed(5))
	st := store.New(nil, nil)
	orch := orchestrator.NewOrchestrator(&models.MConfig{}, nil, gen, st)
	sink := &toastSink{}
	c := NewController(st, orch, gen, closedClock{}, sink)
	require.True(t, c.Refresh(context.Background()).Installed())
	return c, sink
}

// -----------------------------------------------------------------------------

func TestSelectSymbolToasts(t *testing.T) {
	c, sink := newTestController(t)

	detail, err := c.SelectSymbol("nvda")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", detail.Ticker)
	assert.Equal(t, models.MToast{Message: "Selected NVDA", Type: models.ToastInfo, CreatedAt: sink.last().CreatedAt}, sink.last())

	count := len(sink.toasts)
	detail, err = c.SelectSymbol("NFLX")
	var ve *helpers.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.True(t, detail.Placeholder)
	assert.Len(t, sink.toasts, count)
}

func TestToggleFavoriteToasts(t *testing.T) {
	c, sink := newTestController(t)

	added, err := c.ToggleFavorite("tsla")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "Added TSLA to watchlist", sink.last().Message)
	assert.Equal(t, models.ToastSuccess, sink.last().Type)

	added, err = c.ToggleFavorite("TSLA")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, "Removed TSLA from watchlist", sink.last().Message)
	assert.Equal(t, models.ToastInfo, sink.last().Type)

	_, err = c.ToggleFavorite("  ")
	assert.Error(t, err)
}

func TestRemoveFromWatchlistOnlyRemoves(t *testing.T) {
	c, sink := newTestController(t)

	view, err := c.RemoveFromWatchlist("AAPL")
	require.NoError(t, err)
	assert.True(t, view.Empty)
	assert.Empty(t, sink.toasts)

	_, _ = c.ToggleFavorite("AAPL")
	view, err = c.RemoveFromWatchlist("AAPL")
	require.NoError(t, err)
	assert.True(t, view.Empty)
	assert.Equal(t, "Removed AAPL from watchlist", sink.last().Message)
}

func TestSearchSortAndTimeframe(t *testing.T) {
	c, _ := newTestController(t)

	cards := c.Search("corp")
	require.Len(t, cards, 2)
	assert.ElementsMatch(t, []string{"MSFT", "NVDA"}, []string{cards[0].Ticker, cards[1].Ticker})

	cards, err := c.SortBy(store.SortSymbol)
	require.NoError(t, err)
	assert.Equal(t, "MSFT", cards[0].Ticker)

	_, err = c.SortBy("alphabetical")
	assert.Error(t, err)

	chart, err := c.SetTimeframe(utils.TimeframeYearly)
	require.NoError(t, err)
	assert.Len(t, chart.Prices, 366)
	assert.Equal(t, utils.TimeframeYearly, c.View().Timeframe)

	_, err = c.SetTimeframe("hourly")
	assert.Error(t, err)
}

func TestThemeViewModeAndChartType(t *testing.T) {
	c, _ := newTestController(t)

	theme, err := c.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, store.ThemeLight, theme)
	require.NoError(t, c.SetViewMode(store.ViewTable))
	require.NoError(t, c.SetChartType(store.ChartBar))

	view := c.View()
	assert.Equal(t, store.ThemeLight, view.Theme)
	assert.Equal(t, store.ViewTable, view.ViewMode)
	assert.Equal(t, store.ChartBar, view.Chart.ChartType)
	assert.False(t, view.Summary.MarketOpen)
}

func TestRefreshKeepsSelection(t *testing.T) {
	c, _ := newTestController(t)
	_, err := c.SelectSymbol("META")
	require.NoError(t, err)

	result := c.Refresh(context.Background())
	assert.True(t, result.Fallback)
	assert.Equal(t, "META", c.Detail().Ticker)
	assert.Len(t, c.Recent(10), 2)
}
