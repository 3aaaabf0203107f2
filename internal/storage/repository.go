// Package storage persists expenses, incomes and derived alerts in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"financas/internal/core"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense inserts an expense and returns its id.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, value, category, date, description) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Value.StringFixed(2), string(e.Category), e.Date.Format(dateLayout), e.Description)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"user_id", e.UserID,
		"category", e.Category,
		"value", e.Value.StringFixed(2),
		"date", e.Date.Format(dateLayout))

	return id, nil
}

// GetExpense retrieves a single expense scoped to the owning user.
func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, value, category, date, description, created_at
		 FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// ExpenseFilter narrows ListExpenses. Zero values leave a dimension open.
type ExpenseFilter struct {
	Month    time.Time
	Category core.Category
	MinValue decimal.Decimal
	MaxValue decimal.Decimal
	Search   string
}

// ListExpenses returns the user's expenses, newest date first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64, f ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT id, user_id, value, category, date, description, created_at
		FROM expenses WHERE user_id = ?`
	args := []any{userID}

	if !f.Month.IsZero() {
		query += ` AND strftime('%Y-%m', date) = ?`
		args = append(args, f.Month.Format(monthLayout))
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(f.Category))
	}
	if !f.MinValue.IsZero() {
		query += ` AND CAST(value AS REAL) >= ?`
		args = append(args, f.MinValue.InexactFloat64())
	}
	if !f.MaxValue.IsZero() {
		query += ` AND CAST(value AS REAL) <= ?`
		args = append(args, f.MaxValue.InexactFloat64())
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		query += ` AND description LIKE ?`
		args = append(args, "%"+s+"%")
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// DeleteExpense removes an expense owned by the user.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateIncome inserts an income record and returns its id.
func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (user_id, amount, date, income_type, recurring) VALUES (?, ?, ?, ?, ?)`,
		in.UserID, in.Amount.StringFixed(2), in.Date.Format(dateLayout), in.IncomeType, boolToInt(in.Recurring))
	if err != nil {
		return 0, fmt.Errorf("create income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("income insert id: %w", err)
	}

	slog.InfoContext(ctx, "Income saved",
		"id", id,
		"user_id", in.UserID,
		"amount", in.Amount.StringFixed(2),
		"date", in.Date.Format(dateLayout))

	return id, nil
}

// ListIncomes returns the user's income records, optionally restricted to a
// month, newest date first.
func (r *SQLiteRepository) ListIncomes(ctx context.Context, userID int64, month time.Time) ([]core.Income, error) {
	query := `SELECT id, user_id, amount, date, income_type, recurring, created_at
		FROM incomes WHERE user_id = ?`
	args := []any{userID}
	if !month.IsZero() {
		query += ` AND strftime('%Y-%m', date) = ?`
		args = append(args, month.Format(monthLayout))
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		var (
			in        core.Income
			amount    string
			date      string
			recurring int64
		)
		if err := rows.Scan(&in.ID, &in.UserID, &amount, &date, &in.IncomeType, &recurring, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		in.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse income amount %q: %w", amount, err)
		}
		in.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse income date %q: %w", date, err)
		}
		in.Recurring = recurring != 0
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// DeleteIncome removes an income record owned by the user.
func (r *SQLiteRepository) DeleteIncome(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SumIncome implements analysis.Store. Values are summed in Go with decimal
// arithmetic; SQLite SUM over the TEXT column would go through floats.
func (r *SQLiteRepository) SumIncome(ctx context.Context, userID int64, month time.Time) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount FROM incomes WHERE user_id = ? AND strftime('%Y-%m', date) = ?`,
		userID, month.Format(monthLayout))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum income: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scan income amount: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse income amount %q: %w", amount, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// SumExpensesByCategory implements analysis.Store.
func (r *SQLiteRepository) SumExpensesByCategory(ctx context.Context, userID int64, month time.Time) (map[core.Category]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, value FROM expenses WHERE user_id = ? AND strftime('%Y-%m', date) = ?`,
		userID, month.Format(monthLayout))
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}
	defer rows.Close()

	totals := make(map[core.Category]decimal.Decimal)
	for rows.Next() {
		var category, value string
		if err := rows.Scan(&category, &value); err != nil {
			return nil, fmt.Errorf("scan expense value: %w", err)
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("parse expense value %q: %w", value, err)
		}
		c := core.Category(category)
		totals[c] = totals[c].Add(d)
	}
	return totals, rows.Err()
}

// SumExpenses implements analysis.Store.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, userID int64, month time.Time) (decimal.Decimal, error) {
	byCategory, err := r.SumExpensesByCategory(ctx, userID, month)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, d := range byCategory {
		total = total.Add(d)
	}
	return total, nil
}

// ReplaceAlertsForMonth implements analysis.AlertStore: delete-then-insert
// in one transaction so a partial alert set is never visible.
func (r *SQLiteRepository) ReplaceAlertsForMonth(ctx context.Context, userID int64, month time.Time, alerts []core.Alert) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin alert replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM alerts WHERE user_id = ? AND strftime('%Y-%m', month) = ?`,
		userID, month.Format(monthLayout)); err != nil {
		return fmt.Errorf("delete month alerts: %w", err)
	}

	for _, a := range alerts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO alerts (user_id, alert_type, title, message, month, is_read) VALUES (?, ?, ?, ?, ?, 0)`,
			userID, string(a.Type), a.Title, a.Message, core.MonthKey(month).Format(dateLayout)); err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit alert replace: %w", err)
	}

	slog.InfoContext(ctx, "Alert set replaced",
		"user_id", userID,
		"month", month.Format(monthLayout),
		"count", len(alerts))

	return nil
}

// ListAlerts returns the persisted alerts for the user, optionally
// restricted to a month, in insertion order.
func (r *SQLiteRepository) ListAlerts(ctx context.Context, userID int64, month time.Time) ([]core.Alert, error) {
	query := `SELECT id, user_id, alert_type, title, message, month, is_read, created_at
		FROM alerts WHERE user_id = ?`
	args := []any{userID}
	if !month.IsZero() {
		query += ` AND strftime('%Y-%m', month) = ?`
		args = append(args, month.Format(monthLayout))
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []core.Alert
	for rows.Next() {
		var (
			a         core.Alert
			alertType string
			monthStr  string
			read      int64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &alertType, &a.Title, &a.Message, &monthStr, &read, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Type = core.AlertType(alertType)
		a.Month, err = time.Parse(dateLayout, monthStr)
		if err != nil {
			return nil, fmt.Errorf("parse alert month %q: %w", monthStr, err)
		}
		a.Read = read != 0
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkAlertRead flips the read flag. The only in-place mutation alerts ever
// receive; everything else goes through ReplaceAlertsForMonth.
func (r *SQLiteRepository) MarkAlertRead(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("mark alert read %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark alert read %d: %w", id, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ActiveUsers returns the distinct users with any expense or income in the
// month. The worker uses it for periodic regeneration.
func (r *SQLiteRepository) ActiveUsers(ctx context.Context, month time.Time) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM expenses WHERE strftime('%Y-%m', date) = ?
		 UNION
		 SELECT user_id FROM incomes WHERE strftime('%Y-%m', date) = ?`,
		month.Format(monthLayout), month.Format(monthLayout))
	if err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	defer rows.Close()

	var users []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e        core.Expense
		value    string
		category string
		date     string
	)
	if err := row.Scan(&e.ID, &e.UserID, &value, &category, &date, &e.Description, &e.CreatedAt); err != nil {
		return core.Expense{}, err
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense value %q: %w", value, err)
	}
	e.Value = d
	e.Category = core.Category(category)
	e.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date %q: %w", date, err)
	}
	return e, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
