package http

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"financas/internal/core"
)

type createIncomeRequest struct {
	UserID     int64  `json:"user_id"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	IncomeType string `json:"income_type"`
	Recurring  bool   `json:"recurring"`
}

// handleIncomes serves POST (create) and GET (list) on /api/incomes.
func (s *Server) handleIncomes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateIncome(w, r)
	case http.MethodGet:
		s.handleListIncomes(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
	}
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req createIncomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, errInvalidUserID.Error())
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "valor inválido")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "data inválida, use o formato YYYY-MM-DD")
		return
	}

	income := core.Income{
		UserID:     req.UserID,
		Amount:     amount,
		Date:       date,
		IncomeType: sanitizeInput(req.IncomeType),
		Recurring:  req.Recurring,
	}

	id, err := s.incomes.CreateIncome(r.Context(), income)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create income", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao salvar renda")
		return
	}

	s.invalidateSummary(income.UserID, income.Date)

	income.ID = id
	writeJSON(w, http.StatusCreated, toIncomeResponse(income))
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
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

	incomes, err := s.incomes.ListIncomes(r.Context(), userID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list incomes", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao listar rendas")
		return
	}

	out := make([]incomeResponse, 0, len(incomes))
	for _, in := range incomes {
		out = append(out, toIncomeResponse(in))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleIncomeByID serves DELETE on /api/incomes/{id}.
func (s *Server) handleIncomeByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
		return
	}

	id, err := pathID(r.URL.Path, "/api/incomes/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := parseUserID(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := s.incomes.DeleteIncome(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "renda não encontrada")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete income", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "erro ao excluir renda")
		return
	}

	if !date.IsZero() {
		s.invalidateSummary(userID, date)
	}
	w.WriteHeader(http.StatusNoContent)
}
