package analysis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

// fakeStore serves fixed monthly figures to the engine.
type fakeStore struct {
	income     decimal.Decimal
	byCategory map[core.Category]decimal.Decimal
}

func (f *fakeStore) SumIncome(ctx context.Context, userID int64, month time.Time) (decimal.Decimal, error) {
	return f.income, nil
}

func (f *fakeStore) SumExpensesByCategory(ctx context.Context, userID int64, month time.Time) (map[core.Category]decimal.Decimal, error) {
	out := make(map[core.Category]decimal.Decimal, len(f.byCategory))
	for k, v := range f.byCategory {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) SumExpenses(ctx context.Context, userID int64, month time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, v := range f.byCategory {
		total = total.Add(v)
	}
	return total, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var august = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

func TestCategoryPercentage(t *testing.T) {
	cases := []struct {
		amount, income, want string
	}{
		{"1800", "5000", "36"},
		{"800", "5000", "16"},
		{"0", "5000", "0"},
		{"100", "0", "0"},  // guard against division by zero
		{"100", "-50", "0"},
		{"333.33", "1000", "33.33"},
	}
	for _, tc := range cases {
		got := CategoryPercentage(dec(tc.amount), dec(tc.income))
		if !got.Equal(dec(tc.want)) {
			t.Errorf("CategoryPercentage(%s, %s) = %s, want %s", tc.amount, tc.income, got, tc.want)
		}
	}
}

func TestClassifyHealth(t *testing.T) {
	cases := []struct {
		income, expenses string
		want             core.HealthStatus
	}{
		{"0", "1000", core.HealthUnknown},
		{"-10", "0", core.HealthUnknown},
		{"5000", "6000", core.HealthCritical},
		{"1000", "1000", core.HealthPoor},     // ratio 1.0 is not > 1.0
		{"1000", "901", core.HealthPoor},
		{"1000", "900", core.HealthFair},      // ratio exactly 0.9 falls through
		{"1000", "801", core.HealthFair},
		{"1000", "800", core.HealthGood},      // ratio exactly 0.8 falls through
		{"1000", "701", core.HealthGood},
		{"1000", "700", core.HealthExcellent}, // ratio exactly 0.7 falls through
		{"5000", "3000", core.HealthExcellent},
	}
	for _, tc := range cases {
		got := ClassifyHealth(dec(tc.income), dec(tc.expenses))
		if got != tc.want {
			t.Errorf("ClassifyHealth(%s, %s) = %s, want %s", tc.income, tc.expenses, got, tc.want)
		}
	}
}

func TestGenerateAlertsNoIncome(t *testing.T) {
	engine := NewEngine(&fakeStore{income: decimal.Zero, byCategory: map[core.Category]decimal.Decimal{
		core.CategoryMoradia: dec("2000"),
	}})

	alerts, err := engine.GenerateAlerts(context.Background(), 1, august)
	if err != nil {
		t.Fatalf("GenerateAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected exactly one alert, got %d", len(alerts))
	}
	if alerts[0].Type != core.AlertWarning {
		t.Errorf("expected warning, got %s", alerts[0].Type)
	}
	if !strings.Contains(alerts[0].Title, "Renda não informada") {
		t.Errorf("unexpected title %q", alerts[0].Title)
	}
}

func TestGenerateAlertsHousingOnly(t *testing.T) {
	// income 5000, moradia 1800 (36% > 30%), alimentacao 800 (16%),
	// transporte 400 (8%): exactly one alert fires.
	engine := NewEngine(&fakeStore{
		income: dec("5000.00"),
		byCategory: map[core.Category]decimal.Decimal{
			core.CategoryMoradia:     dec("1800.00"),
			core.CategoryAlimentacao: dec("800.00"),
			core.CategoryTransporte:  dec("400.00"),
		},
	})

	alerts, err := engine.GenerateAlerts(context.Background(), 1, august)
	if err != nil {
		t.Fatalf("GenerateAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected exactly one alert, got %d: %+v", len(alerts), alerts)
	}
	a := alerts[0]
	if a.Type != core.AlertWarning {
		t.Errorf("expected warning, got %s", a.Type)
	}
	if a.Title != "Gastos com moradia elevados" {
		t.Errorf("unexpected title %q", a.Title)
	}
	if !strings.Contains(a.Message, "36.0%") {
		t.Errorf("expected percentage with one decimal place in %q", a.Message)
	}
	if !a.Month.Equal(august) {
		t.Errorf("alert month = %v, want %v", a.Month, august)
	}
}

func TestGenerateAlertsTotalRatioExclusivity(t *testing.T) {
	// income 1000, expenses 1100: the 110% danger alert fires and the 90%
	// warning variant must not fire alongside it.
	engine := NewEngine(&fakeStore{
		income: dec("1000.00"),
		byCategory: map[core.Category]decimal.Decimal{
			core.CategoryOutros: dec("1100.00"),
		},
	})

	alerts, err := engine.GenerateAlerts(context.Background(), 1, august)
	if err != nil {
		t.Fatalf("GenerateAlerts: %v", err)
	}

	var sawDanger, sawWarning bool
	for _, a := range alerts {
		if a.Title == "Gastos acima da renda" {
			sawDanger = true
		}
		if a.Title == "Gastos muito altos" {
			sawWarning = true
		}
	}
	if !sawDanger {
		t.Error("expected the over-income danger alert")
	}
	if sawWarning {
		t.Error("the 90% warning must not fire together with the 100% danger alert")
	}
}

func TestGenerateAlertsBalanceAndSavingsOverlap(t *testing.T) {
	t.Run("negative balance yields danger plus info", func(t *testing.T) {
		engine := NewEngine(&fakeStore{
			income: dec("1000.00"),
			byCategory: map[core.Category]decimal.Decimal{
				core.CategoryOutros: dec("1100.00"),
			},
		})
		alerts, err := engine.GenerateAlerts(context.Background(), 1, august)
		if err != nil {
			t.Fatalf("GenerateAlerts: %v", err)
		}
		if !hasAlert(alerts, "Saldo negativo") {
			t.Error("expected negative-balance danger alert")
		}
		if !hasAlert(alerts, "Sem capacidade de poupança") {
			t.Error("expected no-savings info alert alongside the danger alert")
		}
	})

	t.Run("small positive balance yields warning plus info", func(t *testing.T) {
		// balance 50 is below 10% of income (100)
		engine := NewEngine(&fakeStore{
			income: dec("1000.00"),
			byCategory: map[core.Category]decimal.Decimal{
				core.CategoryOutros: dec("950.00"),
			},
		})
		alerts, err := engine.GenerateAlerts(context.Background(), 1, august)
		if err != nil {
			t.Fatalf("GenerateAlerts: %v", err)
		}
		if !hasAlert(alerts, "Saldo baixo") {
			t.Error("expected low-balance warning alert")
		}
		if !hasAlert(alerts, "Poupança abaixo do ideal") {
			t.Error("expected below-ideal savings info alert")
		}
		for _, a := range alerts {
			if a.Title == "Poupança abaixo do ideal" && !strings.Contains(a.Message, "5.0%") {
				t.Errorf("expected savings percentage 5.0%% in %q", a.Message)
			}
		}
	})
}

func TestGenerateAlertsIdempotent(t *testing.T) {
	engine := NewEngine(&fakeStore{
		income: dec("1000.00"),
		byCategory: map[core.Category]decimal.Decimal{
			core.CategoryMoradia: dec("400.00"),
			core.CategoryDividas: dec("300.00"),
		},
	})

	first, err := engine.GenerateAlerts(context.Background(), 1, august)
	if err != nil {
		t.Fatalf("GenerateAlerts: %v", err)
	}
	second, err := engine.GenerateAlerts(context.Background(), 1, august)
	if err != nil {
		t.Fatalf("GenerateAlerts: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("alert counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Type != second[i].Type || first[i].Title != second[i].Title || first[i].Message != second[i].Message {
			t.Errorf("alert %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	engine := NewEngine(&fakeStore{
		income: dec("5000.00"),
		byCategory: map[core.Category]decimal.Decimal{
			core.CategoryMoradia:     dec("1800.00"),
			core.CategoryAlimentacao: dec("800.00"),
			core.CategoryTransporte:  dec("400.00"),
		},
	})

	s, err := engine.Summarize(context.Background(), 1, august)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if !s.TotalExpenses.Equal(dec("3000.00")) {
		t.Errorf("total expenses = %s, want 3000.00", s.TotalExpenses)
	}
	if !s.Balance.Equal(dec("2000.00")) {
		t.Errorf("balance = %s, want 2000.00", s.Balance)
	}
	if s.FinancialHealth != core.HealthExcellent {
		t.Errorf("health = %s, want excellent", s.FinancialHealth)
	}
	if len(s.Alerts) != 1 {
		t.Errorf("expected one alert (housing), got %d", len(s.Alerts))
	}
	if len(s.ExpensesByCategory) != 3 {
		t.Errorf("expected 3 categories, got %d", len(s.ExpensesByCategory))
	}
	// Percentage keys must be a subset of the category keys.
	for category := range s.CategoryPercentages {
		if _, ok := s.ExpensesByCategory[category]; !ok {
			t.Errorf("percentage for %s has no matching category total", category)
		}
	}
	if got := s.CategoryPercentages[core.CategoryMoradia]; !got.Equal(dec("36")) {
		t.Errorf("moradia percentage = %s, want 36", got)
	}
}

func TestSummarizeNoIncome(t *testing.T) {
	engine := NewEngine(&fakeStore{
		income: decimal.Zero,
		byCategory: map[core.Category]decimal.Decimal{
			core.CategoryOutros: dec("120.00"),
		},
	})

	s, err := engine.Summarize(context.Background(), 1, august)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(s.CategoryPercentages) != 0 {
		t.Errorf("percentages must be empty without income, got %v", s.CategoryPercentages)
	}
	if s.FinancialHealth != core.HealthUnknown {
		t.Errorf("health = %s, want unknown", s.FinancialHealth)
	}
	if len(s.Alerts) != 1 || s.Alerts[0].Type != core.AlertWarning {
		t.Errorf("expected single warning alert, got %+v", s.Alerts)
	}
}

func hasAlert(alerts []core.Alert, title string) bool {
	for _, a := range alerts {
		if a.Title == title {
			return true
		}
	}
	return false
}
