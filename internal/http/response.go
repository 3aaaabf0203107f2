package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

// Decimal fields serialize as fixed-point strings with two decimal places.
// Clients never see float rounding artifacts.

type errorResponse struct {
	Error string `json:"error"`
}

type expenseResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Value       string `json:"value"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type incomeResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	IncomeType string `json:"income_type,omitempty"`
	Recurring  bool   `json:"recurring"`
	CreatedAt  string `json:"created_at,omitempty"`
}

type alertResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Month     string `json:"month"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at,omitempty"`
}

type summaryResponse struct {
	Month               string            `json:"month"`
	Income              string            `json:"income"`
	TotalExpenses       string            `json:"total_expenses"`
	Balance             string            `json:"balance"`
	ExpensesByCategory  map[string]string `json:"expenses_by_category"`
	CategoryPercentages map[string]string `json:"category_percentages"`
	Alerts              []alertResponse   `json:"alerts"`
	FinancialHealth     string            `json:"financial_health"`
}

type generateAlertsResponse struct {
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Alerts  []alertResponse `json:"alerts"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Value:       e.Value.StringFixed(2),
		Category:    string(e.Category),
		Date:        e.Date.Format("2006-01-02"),
		Description: e.Description,
	}
	if !e.CreatedAt.IsZero() {
		resp.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toIncomeResponse(in core.Income) incomeResponse {
	resp := incomeResponse{
		ID:         in.ID,
		UserID:     in.UserID,
		Amount:     in.Amount.StringFixed(2),
		Date:       in.Date.Format("2006-01-02"),
		IncomeType: in.IncomeType,
		Recurring:  in.Recurring,
	}
	if !in.CreatedAt.IsZero() {
		resp.CreatedAt = in.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toAlertResponse(a core.Alert) alertResponse {
	resp := alertResponse{
		ID:      a.ID,
		UserID:  a.UserID,
		Type:    string(a.Type),
		Title:   a.Title,
		Message: a.Message,
		Month:   a.Month.Format("2006-01"),
		Read:    a.Read,
	}
	if !a.CreatedAt.IsZero() {
		resp.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toAlertResponses(alerts []core.Alert) []alertResponse {
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	return out
}

func toSummaryResponse(s core.FinancialSummary) summaryResponse {
	resp := summaryResponse{
		Month:               s.Month.Format("2006-01"),
		Income:              s.Income.StringFixed(2),
		TotalExpenses:       s.TotalExpenses.StringFixed(2),
		Balance:             s.Balance.StringFixed(2),
		ExpensesByCategory:  decimalMap(s.ExpensesByCategory),
		CategoryPercentages: decimalMap(s.CategoryPercentages),
		Alerts:              toAlertResponses(s.Alerts),
		FinancialHealth:     string(s.FinancialHealth),
	}
	return resp
}

func decimalMap(m map[core.Category]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[string(k)] = v.StringFixed(2)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
