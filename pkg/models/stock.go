package models

import "github.com/shopspring/decimal"

// PricePoint is one adjusted-close observation from a time series.
type PricePoint struct {
	Symbol        string          `json:"symbol"`
	Date          string          `json:"date"` // yyyy-mm-dd
	AdjustedClose decimal.Decimal `json:"adjustedClose"`
}

// Company is an entry in the static company list served to the frontend.
type Company struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
