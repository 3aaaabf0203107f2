package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"financas/internal/core"
)

// AlertStore is the write side for persisted alerts.
type AlertStore interface {
	// ReplaceAlertsForMonth atomically deletes every alert for the user
	// and month and inserts the given set, each defaulted to unread.
	ReplaceAlertsForMonth(ctx context.Context, userID int64, month time.Time, alerts []core.Alert) error
}

// Reconciler keeps the persisted alert set for a (user, month) equal to the
// latest rule evaluation. Replacement is total: read flags do not survive a
// regeneration.
type Reconciler struct {
	engine *Engine
	store  AlertStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewReconciler(engine *Engine, store AlertStore) *Reconciler {
	return &Reconciler{
		engine: engine,
		store:  store,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing regeneration for one (user, month).
// Racing requests would otherwise interleave the read and the
// delete-then-insert, leaving the last reader's stale set persisted.
func (r *Reconciler) lockFor(userID int64, month time.Time) *sync.Mutex {
	key := fmt.Sprintf("%d:%s", userID, month.Format("2006-01"))
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}

// Regenerate evaluates the rules for the month and replaces the persisted
// alert set with the result. Returns the freshly generated alerts.
func (r *Reconciler) Regenerate(ctx context.Context, userID int64, month time.Time) ([]core.Alert, error) {
	month = core.MonthKey(month)

	l := r.lockFor(userID, month)
	l.Lock()
	defer l.Unlock()

	alerts, err := r.engine.GenerateAlerts(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("generate alerts: %w", err)
	}
	if err := r.store.ReplaceAlertsForMonth(ctx, userID, month, alerts); err != nil {
		return nil, fmt.Errorf("replace alerts: %w", err)
	}

	slog.InfoContext(ctx, "Alerts reconciled",
		"user_id", userID,
		"month", month.Format("2006-01"),
		"count", len(alerts))

	return alerts, nil
}

// SummarizeAndReconcile computes the full summary and persists its alert
// set in the same serialized section, so the summary a caller sees matches
// what was written.
func (r *Reconciler) SummarizeAndReconcile(ctx context.Context, userID int64, month time.Time) (core.FinancialSummary, error) {
	month = core.MonthKey(month)

	l := r.lockFor(userID, month)
	l.Lock()
	defer l.Unlock()

	summary, err := r.engine.Summarize(ctx, userID, month)
	if err != nil {
		return core.FinancialSummary{}, err
	}
	if err := r.store.ReplaceAlertsForMonth(ctx, userID, month, summary.Alerts); err != nil {
		return core.FinancialSummary{}, fmt.Errorf("replace alerts: %w", err)
	}
	return summary, nil
}
