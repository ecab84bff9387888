package models

import "github.com/shopspring/decimal"

// MHistoryPoint is one day of a synthesized price series.
type MHistoryPoint struct {
	Date   string          `json:"date"` // YYYY-MM-DD
	Price  decimal.Decimal `json:"price"`
	Volume int64           `json:"volume"`
}
