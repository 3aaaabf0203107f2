// Package services orchestrates storage writes with alert regeneration,
// either inline or through the AMQP worker.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/storage"
)

// ExpenseService persists expenses and requests alert regeneration for the
// affected month.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateExpense saves the expense, then publishes a regenerate message for
// its month. The write is already durable, so a broker failure only costs
// freshness, not data.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	s.publishRegenerate(ctx, e.UserID, e.Date.Year(), int(e.Date.Month()))

	return id, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	return s.storage.GetExpense(ctx, userID, id)
}

func (s *ExpenseService) ListExpenses(ctx context.Context, userID int64, f storage.ExpenseFilter) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx, userID, f)
}

// DeleteExpense removes the expense and requests regeneration for the month
// it was dated in.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, id int64) error {
	e, err := s.storage.GetExpense(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}
	if err := s.storage.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.publishRegenerate(ctx, userID, e.Date.Year(), int(e.Date.Month()))

	return nil
}

func (s *ExpenseService) publishRegenerate(ctx context.Context, userID int64, year, month int) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping regenerate message")
		return
	}
	if err := s.amqpClient.PublishAlertRegenerate(ctx, userID, year, month); err != nil {
		slog.ErrorContext(ctx, "Failed to publish regenerate message",
			"user_id", userID, "year", year, "month", month, "error", err)
		// Don't fail the request; the record is saved locally.
	}
}

// Close closes storage and the AMQP connection.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
