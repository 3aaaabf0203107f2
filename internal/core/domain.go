package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expense categories form a closed set. Keys double as storage values and
// JSON map keys, so they never get translated or renamed.
const (
	CategoryMoradia       Category = "moradia"
	CategoryAlimentacao   Category = "alimentacao"
	CategoryTransporte    Category = "transporte"
	CategorySaude         Category = "saude"
	CategoryEducacao      Category = "educacao"
	CategoryLazer         Category = "lazer"
	CategoryVestuario     Category = "vestuario"
	CategoryServicos      Category = "servicos"
	CategoryDividas       Category = "dividas"
	CategoryInvestimentos Category = "investimentos"
	CategoryOutros        Category = "outros"
)

const (
	AlertWarning AlertType = "warning"
	AlertDanger  AlertType = "danger"
	AlertInfo    AlertType = "info"
	AlertSuccess AlertType = "success"
)

const (
	HealthUnknown   HealthStatus = "unknown"
	HealthCritical  HealthStatus = "critical"
	HealthPoor      HealthStatus = "poor"
	HealthFair      HealthStatus = "fair"
	HealthGood      HealthStatus = "good"
	HealthExcellent HealthStatus = "excellent"
)

type (
	Category string

	AlertType string

	HealthStatus string

	// Expense is a single dated spend belonging to one user.
	Expense struct {
		ID          int64
		UserID      int64
		Value       decimal.Decimal
		Category    Category
		Date        time.Time
		Description string
		CreatedAt   time.Time
	}

	// Income is a revenue record for one user. Multiple records may exist
	// in the same month; the analysis engine sums them.
	Income struct {
		ID         int64
		UserID     int64
		Amount     decimal.Decimal
		Date       time.Time
		IncomeType string
		Recurring  bool
		CreatedAt  time.Time
	}

	// Alert is a derived advisory row, regenerated wholesale per month.
	Alert struct {
		ID        int64
		UserID    int64
		Type      AlertType
		Title     string
		Message   string
		Month     time.Time // first of month
		Read      bool
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAlertType = errors.New("invalid alert type")
	ErrDescriptionLong  = errors.New("description too long (max 500 characters)")
)

// Categories lists the closed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryMoradia, CategoryAlimentacao, CategoryTransporte,
		CategorySaude, CategoryEducacao, CategoryLazer,
		CategoryVestuario, CategoryServicos, CategoryDividas,
		CategoryInvestimentos, CategoryOutros,
	}
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryMoradia, CategoryAlimentacao, CategoryTransporte,
		CategorySaude, CategoryEducacao, CategoryLazer,
		CategoryVestuario, CategoryServicos, CategoryDividas,
		CategoryInvestimentos, CategoryOutros:
		return true
	}
	return false
}

// ParseCategory normalizes and validates a category string.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func (t AlertType) IsValid() bool {
	switch t {
	case AlertWarning, AlertDanger, AlertInfo, AlertSuccess:
		return true
	}
	return false
}

func (e Expense) Validate() error {
	if e.UserID <= 0 {
		return errors.New("expense requires a user")
	}
	if e.Value.IsNegative() {
		return ErrInvalidAmount
	}
	if err := ValidateValue(e.Value); err != nil {
		return err
	}
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(e.Description) > 500 {
		return ErrDescriptionLong
	}
	return nil
}

func (i Income) Validate() error {
	if i.UserID <= 0 {
		return errors.New("income requires a user")
	}
	if !i.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := ValidateValue(i.Amount); err != nil {
		return err
	}
	if i.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (a Alert) Validate() error {
	if a.UserID <= 0 {
		return errors.New("alert requires a user")
	}
	if !a.Type.IsValid() {
		return ErrInvalidAlertType
	}
	if strings.TrimSpace(a.Title) == "" {
		return errors.New("empty alert title")
	}
	if a.Month.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthKey truncates a date to its first-of-month value in UTC. Income,
// expenses and alerts all group on this key.
func MonthKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseMonth parses a month selector in YYYY-MM form into its month key.
// Malformed input is a caller error and never reaches the engine.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return MonthKey(t), nil
}

// ParseDate parses a record date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
