package models

// MIndexQuote is one market index in the summary strip. Values are already
// formatted to two places.
type MIndexQuote struct {
	Name          string `json:"name" msgpack:"name"`
	Value         string `json:"value" msgpack:"value"`
	ChangePercent string `json:"change_percent" msgpack:"change_percent"`
	Positive      bool   `json:"positive" msgpack:"positive"`
}

// MMarketSummary is the header strip shown above the dashboard.
type MMarketSummary struct {
	Indices     []MIndexQuote `json:"indices" msgpack:"indices"`
	TotalVolume string        `json:"total_volume" msgpack:"total_volume"`
	MarketOpen  bool          `json:"market_open" msgpack:"market_open"`
}
