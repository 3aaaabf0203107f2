package http

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"financas/internal/core"
	"financas/internal/storage"
)

type createExpenseRequest struct {
	UserID      int64  `json:"user_id"`
	Value       string `json:"value"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// handleExpenses serves POST (create) and GET (list) on /api/expenses.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	case http.MethodGet:
		s.handleListExpenses(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, errInvalidUserID.Error())
		return
	}

	value, err := core.ParseAmount(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "valor inválido")
		return
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "categoria inválida")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "data inválida, use o formato YYYY-MM-DD")
		return
	}

	expense := core.Expense{
		UserID:      req.UserID,
		Value:       value,
		Category:    category,
		Date:        date,
		Description: sanitizeInput(req.Description),
	}

	id, err := s.expenses.CreateExpense(r.Context(), expense)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrDescriptionLong) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create expense", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao salvar despesa")
		return
	}

	s.invalidateSummary(expense.UserID, expense.Date)

	expense.ID = id
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	userID, err := parseUserID(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	month, err := parseOptionalMonth(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := storage.ExpenseFilter{
		Month:  month,
		Search: sanitizeInput(query.Get("search")),
	}
	if v := query.Get("category"); v != "" {
		category, err := core.ParseCategory(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "categoria inválida")
			return
		}
		filter.Category = category
	}
	if v := query.Get("min_value"); v != "" {
		min, err := decimal.NewFromString(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_value inválido")
			return
		}
		filter.MinValue = min
	}
	if v := query.Get("max_value"); v != "" {
		max, err := decimal.NewFromString(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_value inválido")
			return
		}
		filter.MaxValue = max
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), userID, filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao listar despesas")
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleExpenseByID serves GET and DELETE on /api/expenses/{id}.
func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/expenses/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := parseUserID(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		expense, err := s.expenses.GetExpense(r.Context(), userID, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, http.StatusNotFound, "despesa não encontrada")
				return
			}
			slog.ErrorContext(r.Context(), "Failed to get expense", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "erro ao buscar despesa")
			return
		}
		writeJSON(w, http.StatusOK, toExpenseResponse(expense))

	case http.MethodDelete:
		expense, err := s.expenses.GetExpense(r.Context(), userID, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, http.StatusNotFound, "despesa não encontrada")
				return
			}
			slog.ErrorContext(r.Context(), "Failed to load expense", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "erro ao excluir despesa")
			return
		}
		if err := s.expenses.DeleteExpense(r.Context(), userID, id); err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete expense", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "erro ao excluir despesa")
			return
		}
		s.invalidateSummary(userID, expense.Date)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
	}
}
