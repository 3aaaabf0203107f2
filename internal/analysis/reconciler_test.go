package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

// memAlertStore keeps alert sets per (user, month) key.
type memAlertStore struct {
	sets map[string][]core.Alert
}

func newMemAlertStore() *memAlertStore {
	return &memAlertStore{sets: make(map[string][]core.Alert)}
}

func (m *memAlertStore) key(userID int64, month time.Time) string {
	return fmt.Sprintf("%d/%s", userID, month.Format("2006-01"))
}

func (m *memAlertStore) ReplaceAlertsForMonth(ctx context.Context, userID int64, month time.Time, alerts []core.Alert) error {
	stored := make([]core.Alert, len(alerts))
	copy(stored, alerts)
	for i := range stored {
		stored[i].Read = false
	}
	m.sets[m.key(userID, month)] = stored
	return nil
}

func TestReconcilerRegenerateOverwrites(t *testing.T) {
	store := &fakeStore{
		income: dec("1000.00"),
		byCategory: map[core.Category]decimal.Decimal{
			core.CategoryOutros: dec("1100.00"),
		},
	}
	alerts := newMemAlertStore()
	rec := NewReconciler(NewEngine(store), alerts)

	first, err := rec.Regenerate(context.Background(), 1, august)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected alerts for overspending month")
	}

	// Underlying data changes: spending drops, fewer rules fire.
	store.byCategory = map[core.Category]decimal.Decimal{
		core.CategoryOutros: dec("100.00"),
	}
	second, err := rec.Regenerate(context.Background(), 1, august)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}

	persisted := alerts.sets[alerts.key(1, august)]
	if len(persisted) != len(second) {
		t.Fatalf("persisted %d alerts, generated %d", len(persisted), len(second))
	}
	for _, a := range persisted {
		if a.Title == "Saldo negativo" {
			t.Error("alert from the first generation survived the overwrite")
		}
		if a.Read {
			t.Error("regenerated alerts must default to unread")
		}
	}
}

func TestReconcilerSummarizeAndReconcile(t *testing.T) {
	store := &fakeStore{
		income: dec("5000.00"),
		byCategory: map[core.Category]decimal.Decimal{
			core.CategoryMoradia: dec("1800.00"),
		},
	}
	alerts := newMemAlertStore()
	rec := NewReconciler(NewEngine(store), alerts)

	s, err := rec.SummarizeAndReconcile(context.Background(), 7, august)
	if err != nil {
		t.Fatalf("SummarizeAndReconcile: %v", err)
	}

	persisted := alerts.sets[alerts.key(7, august)]
	if len(persisted) != len(s.Alerts) {
		t.Fatalf("persisted %d alerts but summary carries %d", len(persisted), len(s.Alerts))
	}
	for i := range persisted {
		if persisted[i].Title != s.Alerts[i].Title {
			t.Errorf("alert %d: persisted %q, summary %q", i, persisted[i].Title, s.Alerts[i].Title)
		}
	}
}
