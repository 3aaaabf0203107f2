package services

import (
	"context"
	"time"

	"financas/internal/analysis"
	"financas/internal/core"
	"financas/internal/storage"
)

// AlertService is the entry point HTTP handlers and the worker share for
// summaries and alert regeneration.
type AlertService struct {
	reconciler *analysis.Reconciler
	storage    *storage.SQLiteRepository
}

func NewAlertService(reconciler *analysis.Reconciler, storage *storage.SQLiteRepository) *AlertService {
	return &AlertService{
		reconciler: reconciler,
		storage:    storage,
	}
}

// Summary computes the month's financial summary and persists its alert set
// as a side effect, so the stored alerts always match the last summary seen.
func (s *AlertService) Summary(ctx context.Context, userID int64, month time.Time) (core.FinancialSummary, error) {
	return s.reconciler.SummarizeAndReconcile(ctx, userID, month)
}

// GenerateAlerts re-runs the rule battery and replaces the persisted set,
// returning the fresh alerts.
func (s *AlertService) GenerateAlerts(ctx context.Context, userID int64, month time.Time) ([]core.Alert, error) {
	return s.reconciler.Regenerate(ctx, userID, month)
}

// ListAlerts returns the persisted alerts, optionally scoped to a month.
func (s *AlertService) ListAlerts(ctx context.Context, userID int64, month time.Time) ([]core.Alert, error) {
	return s.storage.ListAlerts(ctx, userID, month)
}

// MarkRead flips one alert's read flag.
func (s *AlertService) MarkRead(ctx context.Context, userID, id int64) error {
	return s.storage.MarkAlertRead(ctx, userID, id)
}
