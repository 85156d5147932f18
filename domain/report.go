package domain

import "github.com/shopspring/decimal"

// DailySales summarises the sales of one calendar day.
type DailySales struct {
	Date   string          `json:"date"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
	Profit decimal.Decimal `json:"profit"`
	Sales  []Sale          `json:"sales"`
}

type SalesReport struct {
	Days   []DailySales    `json:"days"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
	Profit decimal.Decimal `json:"profit"`
}
