package models

import "time"

// -----------------------------------------------------------------------------
// Rendering instructions produced by the projection package.
// All numbers are pre-formatted so any front end can render them as-is.
// -----------------------------------------------------------------------------

type MCardView struct {
	Ticker        string `json:"ticker" msgpack:"ticker"`
	Name          string `json:"name" msgpack:"name"`
	Price         string `json:"price" msgpack:"price"`
	Change        string `json:"change" msgpack:"change"`
	ChangePercent string `json:"change_percent" msgpack:"change_percent"`
	Volume        string `json:"volume" msgpack:"volume"`
	Positive      bool   `json:"positive" msgpack:"positive"`
	Selected      bool   `json:"selected" msgpack:"selected"`
	Watched       bool   `json:"watched" msgpack:"watched"`
}

type MTableRow struct {
	Ticker        string `json:"ticker" msgpack:"ticker"`
	Name          string `json:"name" msgpack:"name"`
	Price         string `json:"price" msgpack:"price"`
	Change        string `json:"change" msgpack:"change"`
	ChangePercent string `json:"change_percent" msgpack:"change_percent"`
	Volume        string `json:"volume" msgpack:"volume"`
	MarketCap     string `json:"market_cap" msgpack:"market_cap"`
	Positive      bool   `json:"positive" msgpack:"positive"`
	Watched       bool   `json:"watched" msgpack:"watched"`
}

type MWatchlistItem struct {
	Ticker        string `json:"ticker" msgpack:"ticker"`
	Price         string `json:"price" msgpack:"price"`
	ChangePercent string `json:"change_percent" msgpack:"change_percent"`
	Positive      bool   `json:"positive" msgpack:"positive"`
}

type MWatchlistView struct {
	Items   []MWatchlistItem `json:"items" msgpack:"items"`
	Empty   bool             `json:"empty" msgpack:"empty"`
	Message string           `json:"message,omitempty" msgpack:"message,omitempty"`
}

// MDetailView renders every field as "--" when nothing is selected.
type MDetailView struct {
	Ticker      string `json:"ticker" msgpack:"ticker"`
	Name        string `json:"name" msgpack:"name"`
	Price       string `json:"price" msgpack:"price"`
	Open        string `json:"open" msgpack:"open"`
	High        string `json:"high" msgpack:"high"`
	Low         string `json:"low" msgpack:"low"`
	Volume      string `json:"volume" msgpack:"volume"`
	MarketCap   string `json:"market_cap" msgpack:"market_cap"`
	Positive    bool   `json:"positive" msgpack:"positive"`
	Placeholder bool   `json:"placeholder" msgpack:"placeholder"`
}

type MChartView struct {
	Ticker    string    `json:"ticker" msgpack:"ticker"`
	Timeframe string    `json:"timeframe" msgpack:"timeframe"`
	Days      int       `json:"days" msgpack:"days"`
	ChartType string    `json:"chart_type" msgpack:"chart_type"`
	Labels    []string  `json:"labels" msgpack:"labels"`
	Prices    []float64 `json:"prices" msgpack:"prices"`
	Volumes   []int64   `json:"volumes" msgpack:"volumes"`
	Positive  bool      `json:"positive" msgpack:"positive"`
	Color     string    `json:"color" msgpack:"color"`
	Fill      string    `json:"fill" msgpack:"fill"`
	TextColor string    `json:"text_color" msgpack:"text_color"`
	GridColor string    `json:"grid_color" msgpack:"grid_color"`
	Empty     bool      `json:"empty" msgpack:"empty"`
}

// MDashboardView is every projection evaluated against one store state.
type MDashboardView struct {
	SnapshotID  uint64         `json:"snapshot_id" msgpack:"snapshot_id"`
	Source      string         `json:"source" msgpack:"source"`
	LastRefresh time.Time      `json:"last_refresh" msgpack:"last_refresh"`
	Theme       string         `json:"theme" msgpack:"theme"`
	ViewMode    string         `json:"view_mode" msgpack:"view_mode"`
	ChartType   string         `json:"chart_type" msgpack:"chart_type"`
	Timeframe   string         `json:"timeframe" msgpack:"timeframe"`
	Filter      string         `json:"filter" msgpack:"filter"`
	Sort        string         `json:"sort" msgpack:"sort"`
	Selected    string         `json:"selected" msgpack:"selected"`
	Cards       []MCardView    `json:"cards" msgpack:"cards"`
	Table       []MTableRow    `json:"table" msgpack:"table"`
	Watchlist   MWatchlistView `json:"watchlist" msgpack:"watchlist"`
	Detail      MDetailView    `json:"detail" msgpack:"detail"`
	Chart       MChartView     `json:"chart" msgpack:"chart"`
	Summary     MMarketSummary `json:"summary" msgpack:"summary"`
}

// -----------------------------------------------------------------------------

// Toast types.
const (
	ToastInfo    = "info"
	ToastSuccess = "success"
	ToastError   = "error"
)

// MToast is a transient notification for connected clients.
type MToast struct {
	Message   string    `json:"message" msgpack:"message"`
	Type      string    `json:"type" msgpack:"type"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}
