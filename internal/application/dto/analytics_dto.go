package dto

import "github.com/shopspring/decimal"

// DashboardResponse conteos simples del mes en curso.
type DashboardResponse struct {
	InvoicesThisMonth int64           `json:"invoices_this_month"`
	RevenueThisMonth  decimal.Decimal `json:"revenue_this_month"`
	OutstandingTotal  decimal.Decimal `json:"outstanding_total"`
	LowStockRows      int             `json:"low_stock_rows"`
	OutOfStockRows    int             `json:"out_of_stock_rows"`
	Products          int64           `json:"products"`
	Warehouses        int64           `json:"boutiques"`
	Users             int64           `json:"users"`
	Period            string          `json:"period"`
}
