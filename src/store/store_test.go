package store

import (
	"errors"
	"testing"

	"stock-dashboard/src/generator"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPrefs struct {
	values map[string]string
	err    error
}

func newMemPrefs() *memPrefs {
	return &memPrefs{values: map[string]string{}}
}

func (m *memPrefs) GetPreference(key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memPrefs) SetPreference(key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func quote(ticker, name, price, change, volume string) models.MQuote {
	return models.MQuote{
		Symbol: ticker,
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Change: decimal.RequireFromString(change),
		Volume: volume,
	}
}

func tickers(quotes []models.MQuote) []string {
	out := make([]string, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, q.Symbol)
	}
	return out
}

func fixture(id uint64) *models.MSnapshot {
	return &models.MSnapshot{ID: id, Source: models.SourceSynthetic, Quotes: []models.MQuote{
		quote("AAPL", "Apple Inc.", "185.50", "1.25", "52,000,000"),
		quote("TSLA", "Tesla Inc.", "248.50", "-3.10", "9,500,000"),
		quote("MSFT", "Microsoft", "378.90", "2.40", "21,000,000"),
	}}
}

// -----------------------------------------------------------------------------

func TestFilterThenSort(t *testing.T) {
	got := ViewSequence(fixture(1), "A", SortPrice)
	assert.Equal(t, []string{"TSLA", "AAPL"}, tickers(got))

	assert.Equal(t, []string{"MSFT", "AAPL", "TSLA"}, tickers(ViewSequence(fixture(1), "", SortChange)))
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, tickers(ViewSequence(fixture(1), "", SortVolume)))
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, tickers(ViewSequence(fixture(1), "", SortSymbol)))
	assert.Equal(t, []string{"AAPL", "TSLA", "MSFT"}, tickers(ViewSequence(fixture(1), "", SortNone)))
	// name match
	assert.Equal(t, []string{"MSFT"}, tickers(ViewSequence(fixture(1), "micro", SortNone)))
	assert.Empty(t, ViewSequence(nil, "", SortNone))
}

func TestViewSequenceLeavesSnapshotOrder(t *testing.T) {
	snap := fixture(1)
	ViewSequence(snap, "", SortSymbol)
	assert.Equal(t, []string{"AAPL", "TSLA", "MSFT"}, tickers(snap.Quotes))
}

func TestFirstSnapshotSelectsFirstRecord(t *testing.T) {
	s := New(nil, nil)
	assert.Equal(t, "AAPL", s.ReplaceSnapshot(fixture(1)))

	sel, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, "AAPL", sel.Symbol)
	assert.Empty(t, s.ReplaceSnapshot(fixture(2)))
}

func TestSelectionFollowsNewSnapshot(t *testing.T) {
	s := New(nil, nil)
	s.ReplaceSnapshot(fixture(1))
	require.True(t, s.Select("msft"))

	next := fixture(2)
	next.Quotes[2].Price = decimal.RequireFromString("380.00")
	s.ReplaceSnapshot(next)

	sel, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, "MSFT", sel.Symbol)
	assert.Equal(t, "380.00", sel.Price.StringFixed(2))
}

func TestSelectionClearedWhenTickerDisappears(t *testing.T) {
	s := New(nil, nil)
	s.ReplaceSnapshot(fixture(1))
	require.True(t, s.Select("TSLA"))

	next := fixture(2)
	next.Quotes = next.Quotes[:1]
	s.ReplaceSnapshot(next)

	_, ok := s.Selection()
	assert.False(t, ok)
	assert.Empty(t, s.State().Selected)

	// Later snapshots do not re-default the selection.
	s.ReplaceSnapshot(fixture(3))
	_, ok = s.Selection()
	assert.False(t, ok)
}

func TestSelectMissClearsSelection(t *testing.T) {
	s := New(nil, nil)
	s.ReplaceSnapshot(fixture(1))
	assert.False(t, s.Select("NFLX"))
	_, ok := s.Selection()
	assert.False(t, ok)
}

func TestToggleWatchlistIsItsOwnInverse(t *testing.T) {
	prefs := newMemPrefs()
	s := New(prefs, nil)

	_, err := s.ToggleWatchlist("AAPL")
	require.NoError(t, err)
	before := s.Watchlist()
	beforeRaw := prefs.values[KeyWatchlist]
	assert.JSONEq(t, `["AAPL"]`, beforeRaw)

	added, err := s.ToggleWatchlist("tsla")
	require.NoError(t, err)
	assert.True(t, added)
	assert.JSONEq(t, `["AAPL","TSLA"]`, prefs.values[KeyWatchlist])

	added, err = s.ToggleWatchlist("TSLA")
	require.NoError(t, err)
	assert.False(t, added)
	assert.ElementsMatch(t, before, s.Watchlist())
	assert.JSONEq(t, beforeRaw, prefs.values[KeyWatchlist])
}

func TestToggleWatchlistPersistFailure(t *testing.T) {
	prefs := newMemPrefs()
	prefs.err = errors.New("disk full")
	s := New(prefs, nil)

	added, err := s.ToggleWatchlist("AAPL")
	assert.Error(t, err)
	assert.True(t, added)
	assert.True(t, s.IsWatched("AAPL"))
}

func TestRemoveFromWatchlist(t *testing.T) {
	s := New(newMemPrefs(), nil)
	removed, err := s.RemoveFromWatchlist("AAPL")
	require.NoError(t, err)
	assert.False(t, removed)

	_, _ = s.ToggleWatchlist("AAPL")
	removed, err = s.RemoveFromWatchlist("aapl")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, s.Watchlist())
}

func TestLoadPreferences(t *testing.T) {
	prefs := newMemPrefs()
	s := New(prefs, nil)
	require.NoError(t, s.LoadPreferences())
	assert.Equal(t, ThemeDark, s.State().Theme)
	assert.Empty(t, s.Watchlist())

	prefs.values[KeyTheme] = ThemeLight
	prefs.values[KeyWatchlist] = `["NVDA","nvda","META"]`
	s = New(prefs, nil)
	require.NoError(t, s.LoadPreferences())
	assert.Equal(t, ThemeLight, s.State().Theme)
	assert.Equal(t, []string{"NVDA", "META"}, s.Watchlist())

	prefs.values[KeyWatchlist] = `{not json`
	s = New(prefs, nil)
	require.NoError(t, s.LoadPreferences())
	assert.Empty(t, s.Watchlist())
}

func TestThemeToggleAndValidation(t *testing.T) {
	prefs := newMemPrefs()
	s := New(prefs, nil)

	theme, err := s.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)
	assert.Equal(t, ThemeLight, prefs.values[KeyTheme])

	var ve *helpers.ValidationError
	assert.ErrorAs(t, s.SetTheme("sepia"), &ve)
	assert.ErrorAs(t, s.SetSort("market_cap"), &ve)
	assert.ErrorAs(t, s.SetTimeframe("hourly"), &ve)
	assert.ErrorAs(t, s.SetViewMode("list"), &ve)
	assert.ErrorAs(t, s.SetChartType("pie"), &ve)

	require.NoError(t, s.SetSort(SortVolume))
	require.NoError(t, s.SetViewMode(ViewTable))
	require.NoError(t, s.SetChartType(ChartBar))
	st := s.State()
	assert.Equal(t, SortVolume, st.Sort)
	assert.Equal(t, ViewTable, st.ViewMode)
	assert.Equal(t, ChartBar, st.ChartType)
}

func TestSubscribersSeeChanges(t *testing.T) {
	s := New(nil, nil)
	ch, unsubscribe := s.Subscribe()

	s.ReplaceSnapshot(fixture(1))
	assert.Equal(t, ChangeSnapshot, (<-ch).Kind)
	assert.Equal(t, ChangeSelection, (<-ch).Kind)

	s.SetFilter("a")
	assert.Equal(t, ChangeFilter, (<-ch).Kind)

	unsubscribe()
	_, open := <-ch
	assert.False(t, open)
	unsubscribe()

	// A slow subscriber never blocks the store.
	_, unsubscribe = s.Subscribe()
	defer unsubscribe()
	for i := 0; i < subscriberBuffer*2; i++ {
		s.SetFilter("x")
	}
}

func TestStateIsACopy(t *testing.T) {
	s := New(nil, nil)
	_, _ = s.ToggleWatchlist("AAPL")
	st := s.State()
	st.Watchlist[0] = "ZZZ"
	assert.Equal(t, []string{"AAPL"}, s.Watchlist())
}

func TestGeneratedSnapshotInstalls(t *testing.T) {
	gen := generator.New(generator.WithSeed(7))
	s := New(nil, nil)
	s.ReplaceSnapshot(&models.MSnapshot{ID: 1, Quotes: gen.GenerateQuotes(generator.DefaultSymbols())})
	assert.Equal(t, 7, s.Snapshot().Len())
	assert.False(t, s.State().LastRefresh.IsZero())
}

func TestDefaultThemeYieldsToStoredPreference(t *testing.T) {
	prefs := newMemPrefs()
	s := New(prefs, nil)
	s.UseDefaultTheme(ThemeLight)
	s.UseDefaultTheme("sepia")
	require.NoError(t, s.LoadPreferences())
	assert.Equal(t, ThemeLight, s.State().Theme)
	_, stored, _ := prefs.GetPreference(KeyTheme)
	assert.False(t, stored)

	prefs.values[KeyTheme] = ThemeDark
	s = New(prefs, nil)
	s.UseDefaultTheme(ThemeLight)
	require.NoError(t, s.LoadPreferences())
	assert.Equal(t, ThemeDark, s.State().Theme)
}
