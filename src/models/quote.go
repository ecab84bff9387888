package models

import (
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// MQuote is one symbol's record inside a snapshot.
// Volume and MarketCap are display strings; every other number is a
// two-place decimal.
type MQuote struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Volume        string          `json:"volume"`
	MarketCap     string          `json:"market_cap"`
	PreviousClose decimal.Decimal `json:"previous_close"`
}

// -----------------------------------------------------------------------------

// IsPositive reports whether the quote moved up or stayed flat.
func (q MQuote) IsPositive() bool {
	return !q.Change.IsNegative()
}
