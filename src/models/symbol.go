package models

// MSymbol describes one tracked equity. The tracked set is fixed at startup.
type MSymbol struct {
	Ticker string `json:"ticker" yaml:"ticker"`
	Name   string `json:"name" yaml:"name"`
	Sector string `json:"sector" yaml:"sector"`
}
