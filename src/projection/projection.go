package projection

import (
	"time"

	"stock-dashboard/src/models"
	"stock-dashboard/src/store"
	"stock-dashboard/src/utils"
)

const emptyWatchlistMessage = "No stocks in watchlist"

// HistorySource produces a fresh price series per call.
type HistorySource interface {
	GenerateHistory(ticker string, days int) []models.MHistoryPoint
}

// SummarySource produces the market index strip.
type SummarySource interface {
	GenerateMarketSummary() models.MMarketSummary
}

// Clock says whether a tracked market is open.
type Clock interface {
	AnyMarketOpen() bool
}

// Generator is what Dashboard needs to build the non-deterministic parts.
type Generator interface {
	HistorySource
	SummarySource
}

// -----------------------------------------------------------------------------

// Cards renders the filtered, sorted view sequence as grid cards.
func Cards(state store.State) []models.MCardView {
	seq := store.ViewSequence(state.Snapshot, state.Filter, state.Sort)
	cards := make([]models.MCardView, 0, len(seq))
	for _, q := range seq {
		cards = append(cards, models.MCardView{
			Ticker:        q.Symbol,
			Name:          q.Name,
			Price:         utils.FormatMoney(q.Price),
			Change:        utils.FormatSigned(q.Change),
			ChangePercent: utils.FormatSignedPercent(q.ChangePercent),
			Volume:        q.Volume,
			Positive:      q.IsPositive(),
			Selected:      q.Symbol == state.Selected,
			Watched:       state.IsWatched(q.Symbol),
		})
	}
	return cards
}

// -----------------------------------------------------------------------------

// Table renders the same sequence as Cards, one row per quote.
func Table(state store.State) []models.MTableRow {
	seq := store.ViewSequence(state.Snapshot, state.Filter, state.Sort)
	rows := make([]models.MTableRow, 0, len(seq))
	for _, q := range seq {
		rows = append(rows, models.MTableRow{
			Ticker:        q.Symbol,
			Name:          q.Name,
			Price:         utils.FormatMoney(q.Price),
			Change:        utils.FormatSigned(q.Change),
			ChangePercent: utils.FormatSignedPercent(q.ChangePercent),
			Volume:        q.Volume,
			MarketCap:     q.MarketCap,
			Positive:      q.IsPositive(),
			Watched:       state.IsWatched(q.Symbol),
		})
	}
	return rows
}

// -----------------------------------------------------------------------------

// Watchlist lists watched tickers present in the snapshot, in snapshot
// order. Filter and sort do not apply.
func Watchlist(state store.State) models.MWatchlistView {
	if len(state.Watchlist) == 0 {
		return models.MWatchlistView{Items: []models.MWatchlistItem{}, Empty: true, Message: emptyWatchlistMessage}
	}

	items := []models.MWatchlistItem{}
	if state.Snapshot != nil {
		for _, q := range state.Snapshot.Quotes {
			if !state.IsWatched(q.Symbol) {
				continue
			}
			items = append(items, models.MWatchlistItem{
				Ticker:        q.Symbol,
				Price:         utils.FormatMoney(q.Price),
				ChangePercent: utils.FormatSignedPercent(q.ChangePercent),
				Positive:      q.IsPositive(),
			})
		}
	}
	return models.MWatchlistView{Items: items}
}

// -----------------------------------------------------------------------------

// Detail renders the selected quote, or placeholders when nothing resolves.
func Detail(state store.State) models.MDetailView {
	q, ok := state.Selection()
	if !ok {
		return models.MDetailView{
			Price:       utils.Placeholder,
			Open:        utils.Placeholder,
			High:        utils.Placeholder,
			Low:         utils.Placeholder,
			Volume:      utils.Placeholder,
			MarketCap:   utils.Placeholder,
			Placeholder: true,
		}
	}

	return models.MDetailView{
		Ticker:    q.Symbol,
		Name:      q.Name,
		Price:     utils.FormatMoney(q.Price),
		Open:      utils.FormatMoney(q.Open),
		High:      utils.FormatMoney(q.High),
		Low:       utils.FormatMoney(q.Low),
		Volume:    q.Volume,
		MarketCap: q.MarketCap,
		Positive:  q.IsPositive(),
	}
}

// -----------------------------------------------------------------------------

// Chart generates a fresh series for the selection on every call. An empty
// timeframe uses the store's. The trend colour compares last to first point.
func Chart(state store.State, gen HistorySource, timeframe string) models.MChartView {
	if timeframe == "" {
		timeframe = state.Timeframe
	}
	days := utils.TimeframeDays(timeframe)
	colors := colorsFor(state.Theme)

	view := models.MChartView{
		Timeframe: timeframe,
		Days:      days,
		ChartType: state.ChartType,
		Labels:    []string{},
		Prices:    []float64{},
		Volumes:   []int64{},
		Color:     ColorPrimary,
		Fill:      ColorPrimary + fillAlpha,
		TextColor: colors.text,
		GridColor: colors.grid,
	}

	q, ok := state.Selection()
	if !ok {
		view.Empty = true
		return view
	}
	view.Ticker = q.Symbol

	series := gen.GenerateHistory(q.Symbol, days)
	for _, p := range series {
		view.Labels = append(view.Labels, chartLabel(p.Date))
		view.Prices = append(view.Prices, p.Price.InexactFloat64())
		view.Volumes = append(view.Volumes, p.Volume)
	}

	if n := len(series); n > 0 {
		view.Positive = series[n-1].Price.GreaterThanOrEqual(series[0].Price)
	}
	view.Color = ColorNegative
	if view.Positive {
		view.Color = ColorPositive
	}
	view.Fill = view.Color + fillAlpha
	return view
}

// -----------------------------------------------------------------------------

// chartLabel turns "2024-01-02" into "Jan 2".
func chartLabel(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}

// -----------------------------------------------------------------------------

func Summary(gen SummarySource, clock Clock) models.MMarketSummary {
	summary := gen.GenerateMarketSummary()
	if clock != nil {
		summary.MarketOpen = clock.AnyMarketOpen()
	}
	return summary
}

// -----------------------------------------------------------------------------

// Dashboard evaluates every projection against one state.
func Dashboard(state store.State, gen Generator, clock Clock) models.MDashboardView {
	view := models.MDashboardView{
		LastRefresh: state.LastRefresh,
		Theme:       state.Theme,
		ViewMode:    state.ViewMode,
		ChartType:   state.ChartType,
		Timeframe:   state.Timeframe,
		Filter:      state.Filter,
		Sort:        state.Sort,
		Selected:    state.Selected,
		Cards:       Cards(state),
		Table:       Table(state),
		Watchlist:   Watchlist(state),
		Detail:      Detail(state),
		Chart:       Chart(state, gen, ""),
		Summary:     Summary(gen, clock),
	}
	if state.Snapshot != nil {
		view.SnapshotID = state.Snapshot.ID
		view.Source = state.Snapshot.Source
	}
	return view
}
