package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/analysis"
	"financas/internal/storage"
)

// AlertWorker consumes regeneration requests and keeps persisted alerts in
// line with the current month's records.
type AlertWorker struct {
	reconciler *analysis.Reconciler
	storage    *storage.SQLiteRepository
}

func NewAlertWorker(reconciler *analysis.Reconciler, storage *storage.SQLiteRepository) *AlertWorker {
	return &AlertWorker{
		reconciler: reconciler,
		storage:    storage,
	}
}

// HandleRegenerateMessage processes a single alert regeneration message from AMQP
func (w *AlertWorker) HandleRegenerateMessage(ctx context.Context, msg *amqp.AlertRegenerateMessage) error {
	slog.InfoContext(ctx, "Processing regenerate message",
		"user_id", msg.UserID,
		"year", msg.Year,
		"month", msg.Month)

	month := time.Date(msg.Year, time.Month(msg.Month), 1, 0, 0, 0, 0, time.UTC)

	alerts, err := w.reconciler.Regenerate(ctx, msg.UserID, month)
	if err != nil {
		return fmt.Errorf("regenerate alerts: %w", err)
	}

	slog.InfoContext(ctx, "Alerts regenerated from message",
		"user_id", msg.UserID,
		"month", month.Format("2006-01"),
		"count", len(alerts))

	return nil
}

// RegenerateCurrentMonth re-evaluates every user with records this month.
// This is a backup mechanism in case AMQP messages are lost.
func (w *AlertWorker) RegenerateCurrentMonth(ctx context.Context) error {
	month := time.Now().UTC()

	users, err := w.storage.ActiveUsers(ctx, month)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}

	if len(users) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Regenerating alerts for active users", "count", len(users))

	for _, userID := range users {
		if _, err := w.reconciler.Regenerate(ctx, userID, month); err != nil {
			slog.ErrorContext(ctx, "Failed to regenerate alerts", "user_id", userID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck runs a full pass at worker startup so alerts for the current
// month are fresh even after downtime or missed messages.
func (w *AlertWorker) StartupCheck(ctx context.Context) error {
	month := time.Now().UTC()

	users, err := w.storage.ActiveUsers(ctx, month)
	if err != nil {
		return fmt.Errorf("list active users for startup check: %w", err)
	}

	if len(users) == 0 {
		slog.InfoContext(ctx, "No active users found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found active users on startup, regenerating...",
		"count", len(users))

	successCount := 0
	errorCount := 0

	for _, userID := range users {
		if _, err := w.reconciler.Regenerate(ctx, userID, month); err != nil {
			slog.ErrorContext(ctx, "Failed to regenerate alerts during startup",
				"user_id", userID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup regeneration completed",
		"success", successCount,
		"errors", errorCount)

	return nil
}
