package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/storage"
)

// IncomeService persists income records and requests alert regeneration.
type IncomeService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewIncomeService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *IncomeService {
	return &IncomeService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

func (s *IncomeService) CreateIncome(ctx context.Context, in core.Income) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateIncome(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("save income: %w", err)
	}

	s.publishRegenerate(ctx, in.UserID, in.Date.Year(), int(in.Date.Month()))

	return id, nil
}

func (s *IncomeService) ListIncomes(ctx context.Context, userID int64, month time.Time) ([]core.Income, error) {
	return s.storage.ListIncomes(ctx, userID, month)
}

// DeleteIncome removes the record and returns the date it was filed under,
// so callers can invalidate the affected month.
func (s *IncomeService) DeleteIncome(ctx context.Context, userID, id int64) (time.Time, error) {
	// The month has to be known before the row disappears.
	incomes, err := s.storage.ListIncomes(ctx, userID, time.Time{})
	if err != nil {
		return time.Time{}, fmt.Errorf("load incomes: %w", err)
	}
	var date time.Time
	for _, in := range incomes {
		if in.ID == id {
			date = in.Date
			break
		}
	}

	if err := s.storage.DeleteIncome(ctx, userID, id); err != nil {
		return time.Time{}, fmt.Errorf("delete income: %w", err)
	}

	if !date.IsZero() {
		s.publishRegenerate(ctx, userID, date.Year(), int(date.Month()))
	}

	return date, nil
}

func (s *IncomeService) publishRegenerate(ctx context.Context, userID int64, year, month int) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping regenerate message")
		return
	}
	if err := s.amqpClient.PublishAlertRegenerate(ctx, userID, year, month); err != nil {
		slog.ErrorContext(ctx, "Failed to publish regenerate message",
			"user_id", userID, "year", year, "month", month, "error", err)
	}
}
