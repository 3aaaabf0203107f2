// Package analysis implements the financial analysis engine: monthly
// aggregation of income and expenses, the alert rule battery, the
// financial-health classification and the alert reconciler.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

// Category ceilings as a percentage of income. Exceeding a ceiling
// (strictly) emits the corresponding alert.
var (
	ceilingMoradia     = decimal.NewFromInt(30)
	ceilingAlimentacao = decimal.NewFromInt(20)
	ceilingTransporte  = decimal.NewFromInt(15)
	ceilingLazer       = decimal.NewFromInt(10)
	ceilingDividas     = decimal.NewFromInt(20)

	hundred  = decimal.NewFromInt(100)
	ninety   = decimal.NewFromInt(90)
	tenthOfD = decimal.NewFromFloat(0.1)
)

// Store is the read side the engine aggregates over. Implementations match
// records by year and month of their date, not exact day.
type Store interface {
	// SumIncome returns the total income recorded in the month, 0 if none.
	// All income records dated within the month are summed.
	SumIncome(ctx context.Context, userID int64, month time.Time) (decimal.Decimal, error)
	// SumExpensesByCategory sums expense values per category for the month.
	// Categories without expenses are absent from the map.
	SumExpensesByCategory(ctx context.Context, userID int64, month time.Time) (map[core.Category]decimal.Decimal, error)
	// SumExpenses returns the total expense value for the month, 0 if none.
	SumExpenses(ctx context.Context, userID int64, month time.Time) (decimal.Decimal, error)
}

// Engine computes summaries and alerts over a Store.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Balance returns income minus total expenses for the month. May be negative.
func (e *Engine) Balance(ctx context.Context, userID int64, month time.Time) (decimal.Decimal, error) {
	income, err := e.store.SumIncome(ctx, userID, month)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum income: %w", err)
	}
	expenses, err := e.store.SumExpenses(ctx, userID, month)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	return income.Sub(expenses), nil
}

// CategoryPercentage returns amount/income*100 rounded to two decimal
// places, or 0 when income is not positive. The guard keeps every
// percentage-based rule total even with no income recorded.
func CategoryPercentage(amount, income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return amount.Div(income).Mul(hundred).Round(2)
}

// ClassifyHealth maps the expense-to-income ratio to a discrete label.
// Band edges are exclusive on the upper side: a ratio of exactly 0.9
// classifies as fair, not poor.
func ClassifyHealth(income, totalExpenses decimal.Decimal) core.HealthStatus {
	if !income.IsPositive() {
		return core.HealthUnknown
	}
	ratio := totalExpenses.Div(income)
	switch {
	case ratio.GreaterThan(decimal.NewFromInt(1)):
		return core.HealthCritical
	case ratio.GreaterThan(decimal.NewFromFloat(0.9)):
		return core.HealthPoor
	case ratio.GreaterThan(decimal.NewFromFloat(0.8)):
		return core.HealthFair
	case ratio.GreaterThan(decimal.NewFromFloat(0.7)):
		return core.HealthGood
	default:
		return core.HealthExcellent
	}
}

// GenerateAlerts evaluates the rule battery for the month and returns the
// resulting alerts in rule order, not yet persisted.
//
// Rule order matters for display. With no income recorded the single
// "Renda não informada" alert short-circuits everything else, since the
// percentage rules are meaningless without income.
func (e *Engine) GenerateAlerts(ctx context.Context, userID int64, month time.Time) ([]core.Alert, error) {
	month = core.MonthKey(month)

	income, err := e.store.SumIncome(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("sum income: %w", err)
	}

	newAlert := func(t core.AlertType, title, message string) core.Alert {
		return core.Alert{UserID: userID, Type: t, Title: title, Message: message, Month: month}
	}

	var alerts []core.Alert

	if !income.IsPositive() {
		alerts = append(alerts, newAlert(core.AlertWarning,
			"Renda não informada",
			"Informe sua renda mensal para receber análises personalizadas."))
		return alerts, nil
	}

	byCategory, err := e.store.SumExpensesByCategory(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}
	totalExpenses, err := e.store.SumExpenses(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}
	balance := income.Sub(totalExpenses)

	// Category ceilings. An absent category counts as zero and never fires.
	type categoryRule struct {
		category core.Category
		ceiling  decimal.Decimal
		severity core.AlertType
		title    string
		advice   string
	}
	rules := []categoryRule{
		{core.CategoryMoradia, ceilingMoradia, core.AlertWarning,
			"Gastos com moradia elevados",
			"Isso pode indicar instabilidade financeira."},
		{core.CategoryAlimentacao, ceilingAlimentacao, core.AlertWarning,
			"Gastos com alimentação elevados",
			"Considere revisar seus hábitos alimentares."},
		{core.CategoryTransporte, ceilingTransporte, core.AlertWarning,
			"Gastos com transporte elevados",
			"Considere otimizar seus deslocamentos."},
		{core.CategoryLazer, ceilingLazer, core.AlertInfo,
			"Gastos com lazer elevados",
			"Equilibre diversão e responsabilidade financeira."},
		{core.CategoryDividas, ceilingDividas, core.AlertDanger,
			"Gastos com dívidas elevados",
			"Risco de sobre-endividamento!"},
	}
	names := map[core.Category]string{
		core.CategoryMoradia:     "moradia",
		core.CategoryAlimentacao: "alimentação",
		core.CategoryTransporte:  "transporte",
		core.CategoryLazer:       "lazer",
		core.CategoryDividas:     "dívidas",
	}
	for _, r := range rules {
		pct := CategoryPercentage(byCategory[r.category], income)
		if pct.GreaterThan(r.ceiling) {
			alerts = append(alerts, newAlert(r.severity, r.title, fmt.Sprintf(
				"Seus gastos com %s representam %s%% da renda (ideal: até %s%%). %s",
				names[r.category], core.FormatPercent(pct), r.ceiling.String(), r.advice)))
		}
	}

	// Total spend against income. The two branches are mutually exclusive.
	totalPct := CategoryPercentage(totalExpenses, income)
	if totalPct.GreaterThan(hundred) {
		alerts = append(alerts, newAlert(core.AlertDanger,
			"Gastos acima da renda", fmt.Sprintf(
				"Seus gastos (%s%% da renda) excedem sua renda mensal. Risco de inadimplência!",
				core.FormatPercent(totalPct))))
	} else if totalPct.GreaterThan(ninety) {
		alerts = append(alerts, newAlert(core.AlertWarning,
			"Gastos muito altos", fmt.Sprintf(
				"Seus gastos representam %s%% da renda. Risco de endividamento.",
				core.FormatPercent(totalPct))))
	}

	// Monthly balance. Only the first true branch fires.
	lowBalanceFloor := income.Mul(tenthOfD)
	if balance.IsNegative() {
		alerts = append(alerts, newAlert(core.AlertDanger,
			"Saldo negativo", fmt.Sprintf(
				"Seu saldo mensal é negativo (%s). Ajuste imediato necessário.",
				core.FormatBRL(balance))))
	} else if balance.LessThan(lowBalanceFloor) {
		alerts = append(alerts, newAlert(core.AlertWarning,
			"Saldo baixo", fmt.Sprintf(
				"Seu saldo mensal é muito baixo (%s). Considere revisar seu orçamento.",
				core.FormatBRL(balance))))
	}

	// Savings capacity. Conditions overlap the balance rule on purpose: a
	// negative balance yields both a danger and an info alert, and a small
	// positive balance yields both a warning and an info alert.
	if !balance.IsPositive() {
		alerts = append(alerts, newAlert(core.AlertInfo,
			"Sem capacidade de poupança",
			"Você não conseguiu poupar neste mês. Tente reduzir gastos para criar uma reserva de emergência."))
	} else if balance.LessThan(lowBalanceFloor) {
		alerts = append(alerts, newAlert(core.AlertInfo,
			"Poupança abaixo do ideal", fmt.Sprintf(
				"Sua capacidade de poupança é %s%% da renda (ideal: pelo menos 10%%).",
				core.FormatPercent(CategoryPercentage(balance, income)))))
	}

	return alerts, nil
}

// Summarize composes the full financial summary for the month.
// CategoryPercentages stays empty when no income is recorded.
func (e *Engine) Summarize(ctx context.Context, userID int64, month time.Time) (core.FinancialSummary, error) {
	month = core.MonthKey(month)

	income, err := e.store.SumIncome(ctx, userID, month)
	if err != nil {
		return core.FinancialSummary{}, fmt.Errorf("sum income: %w", err)
	}
	byCategory, err := e.store.SumExpensesByCategory(ctx, userID, month)
	if err != nil {
		return core.FinancialSummary{}, fmt.Errorf("sum expenses by category: %w", err)
	}
	totalExpenses, err := e.store.SumExpenses(ctx, userID, month)
	if err != nil {
		return core.FinancialSummary{}, fmt.Errorf("sum expenses: %w", err)
	}
	alerts, err := e.GenerateAlerts(ctx, userID, month)
	if err != nil {
		return core.FinancialSummary{}, fmt.Errorf("generate alerts: %w", err)
	}

	percentages := map[core.Category]decimal.Decimal{}
	if income.IsPositive() {
		for category, amount := range byCategory {
			percentages[category] = CategoryPercentage(amount, income)
		}
	}

	return core.FinancialSummary{
		Month:               month,
		Income:              income,
		TotalExpenses:       totalExpenses,
		Balance:             income.Sub(totalExpenses),
		ExpensesByCategory:  byCategory,
		CategoryPercentages: percentages,
		Alerts:              alerts,
		FinancialHealth:     ClassifyHealth(income, totalExpenses),
	}, nil
}
