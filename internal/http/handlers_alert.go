package http

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"financas/internal/core"
)

// handleFinancialSummary serves GET /api/financial-summary?user_id&month.
// Computing the summary also persists its alert set, so the stored alerts
// always match what the caller saw. Cached summaries skip that work until
// a write invalidates them or the TTL lapses.
func (s *Server) handleFinancialSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
		return
	}

	query := r.URL.Query()
	userID, err := parseUserID(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	month, err := parseMonthParam(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := summaryCacheKey(userID, month)
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toSummaryResponse(cached))
		return
	}

	summary, err := s.alerts.Summary(r.Context(), userID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build summary",
			"error", err, "user_id", userID, "month", month.Format("2006-01"))
		writeError(w, http.StatusInternalServerError, "erro ao gerar resumo financeiro")
		return
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

type generateAlertsRequest struct {
	UserID int64  `json:"user_id"`
	Month  string `json:"month"`
}

// handleGenerateAlerts serves POST /api/generate-alerts.
func (s *Server) handleGenerateAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
		return
	}

	var req generateAlertsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, errInvalidUserID.Error())
		return
	}

	month := core.MonthKey(nowUTC())
	if strings.TrimSpace(req.Month) != "" {
		m, err := core.ParseMonth(req.Month)
		if err != nil {
			writeError(w, http.StatusBadRequest, errInvalidMonth.Error())
			return
		}
		month = m
	}

	alerts, err := s.alerts.GenerateAlerts(r.Context(), req.UserID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to generate alerts",
			"error", err, "user_id", req.UserID, "month", month.Format("2006-01"))
		writeError(w, http.StatusInternalServerError, "erro ao gerar alertas")
		return
	}

	s.invalidateSummary(req.UserID, month)

	writeJSON(w, http.StatusOK, generateAlertsResponse{
		Message: fmt.Sprintf("%d alertas gerados", len(alerts)),
		Count:   len(alerts),
		Alerts:  toAlertResponses(alerts),
	})
}

// handleListAlerts serves GET /api/alerts?user_id&month.
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
		return
	}

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

	alerts, err := s.alerts.ListAlerts(r.Context(), userID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list alerts", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao listar alertas")
		return
	}

	writeJSON(w, http.StatusOK, toAlertResponses(alerts))
}

// handleAlertRead serves POST /api/alerts/{id}/read.
func (s *Server) handleAlertRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
		return
	}
	if !strings.HasSuffix(r.URL.Path, "/read") {
		writeError(w, http.StatusNotFound, "recurso não encontrado")
		return
	}

	id, err := pathID(r.URL.Path, "/api/alerts/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := parseUserID(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.alerts.MarkRead(r.Context(), userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "alerta não encontrado")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to mark alert read", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "erro ao marcar alerta como lido")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
