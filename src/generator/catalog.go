package generator

import "stock-dashboard/src/models"

// DefaultBasePrice is the baseline for tickers missing from the catalog.
const DefaultBasePrice = 100.0

var basePrices = map[string]float64{
	"AAPL":  185.50,
	"GOOGL": 141.80,
	"MSFT":  378.90,
	"TSLA":  248.50,
	"AMZN":  178.25,
	"NVDA":  495.80,
	"META":  505.75,
}

var marketCaps = map[string]string{
	"AAPL":  "2.89T",
	"GOOGL": "1.78T",
	"MSFT":  "2.81T",
	"TSLA":  "789B",
	"AMZN":  "1.85T",
	"NVDA":  "1.22T",
	"META":  "1.29T",
}

// -----------------------------------------------------------------------------

// DefaultSymbols returns the tracked symbol set in display order.
func DefaultSymbols() []models.MSymbol {
	return []models.MSymbol{
		{Ticker: "AAPL", Name: "Apple Inc.", Sector: "Technology"},
		{Ticker: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology"},
		{Ticker: "MSFT", Name: "Microsoft Corporation", Sector: "Technology"},
		{Ticker: "TSLA", Name: "Tesla Inc.", Sector: "Automotive"},
		{Ticker: "AMZN", Name: "Amazon.com Inc.", Sector: "E-commerce"},
		{Ticker: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology"},
		{Ticker: "META", Name: "Meta Platforms Inc.", Sector: "Technology"},
	}
}

// -----------------------------------------------------------------------------

// BasePrice returns the synthetic baseline for ticker.
func BasePrice(ticker string) float64 {
	if p, ok := basePrices[ticker]; ok {
		return p
	}
	return DefaultBasePrice
}

// -----------------------------------------------------------------------------

// MarketCap returns the display market cap for ticker, or "--".
func MarketCap(ticker string) string {
	if c, ok := marketCaps[ticker]; ok {
		return c
	}
	return "--"
}
