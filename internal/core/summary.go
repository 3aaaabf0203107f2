package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialSummary is the composed analysis result for one user and month.
// It is recomputed on every request and never persisted; only its Alerts
// are written back by the reconciler.
type FinancialSummary struct {
	Month               time.Time
	Income              decimal.Decimal
	TotalExpenses       decimal.Decimal
	Balance             decimal.Decimal
	ExpensesByCategory  map[Category]decimal.Decimal
	CategoryPercentages map[Category]decimal.Decimal
	Alerts              []Alert
	FinancialHealth     HealthStatus
}
