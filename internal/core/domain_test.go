package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Category
		wantErr bool
	}{
		{name: "plain", input: "moradia", want: CategoryMoradia},
		{name: "uppercase", input: "MORADIA", want: CategoryMoradia},
		{name: "whitespace", input: "  lazer ", want: CategoryLazer},
		{name: "unknown", input: "videogames", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCategory) {
					t.Fatalf("ParseCategory(%q) error = %v, want ErrInvalidCategory", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCategory(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategoriesClosedSet(t *testing.T) {
	cats := Categories()
	if len(cats) != 11 {
		t.Fatalf("Categories() = %d entries, want 11", len(cats))
	}
	for _, c := range cats {
		if !c.IsValid() {
			t.Errorf("category %s should be valid", c)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		UserID:   1,
		Value:    decimal.NewFromInt(100),
		Category: CategoryAlimentacao,
		Date:     time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		mutate  func(e *Expense)
		wantErr error
	}{
		{name: "valid", mutate: func(e *Expense) {}},
		{name: "zero value allowed", mutate: func(e *Expense) { e.Value = decimal.Zero }},
		{
			name:    "no user",
			mutate:  func(e *Expense) { e.UserID = 0 },
			wantErr: errors.New("expense requires a user"),
		},
		{
			name:    "negative value",
			mutate:  func(e *Expense) { e.Value = decimal.NewFromInt(-5) },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "above ceiling",
			mutate:  func(e *Expense) { e.Value = decimal.NewFromInt(1_000_001) },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "bad category",
			mutate:  func(e *Expense) { e.Category = "videogames" },
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "zero date",
			mutate:  func(e *Expense) { e.Date = time.Time{} },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "long description",
			mutate:  func(e *Expense) { e.Description = strings.Repeat("x", 501) },
			wantErr: ErrDescriptionLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			var sentinel error
			switch tt.wantErr {
			case ErrInvalidAmount, ErrInvalidCategory, ErrInvalidDate, ErrDescriptionLong:
				sentinel = tt.wantErr
			}
			if sentinel != nil && !errors.Is(err, sentinel) {
				t.Errorf("Validate() error = %v, want %v", err, sentinel)
			}
		})
	}

	t.Run("description at limit", func(t *testing.T) {
		e := valid
		e.Description = strings.Repeat("x", 500)
		if err := e.Validate(); err != nil {
			t.Errorf("500-char description should be valid, got %v", err)
		}
	})
}

func TestIncomeValidate(t *testing.T) {
	valid := Income{
		UserID: 1,
		Amount: decimal.NewFromInt(5000),
		Date:   time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC),
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("valid income error = %v", err)
	}

	zero := valid
	zero.Amount = decimal.Zero
	if err := zero.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero income error = %v, want ErrInvalidAmount", err)
	}

	noDate := valid
	noDate.Date = time.Time{}
	if err := noDate.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("zero date error = %v, want ErrInvalidDate", err)
	}
}

func TestAlertValidate(t *testing.T) {
	valid := Alert{
		UserID: 1,
		Type:   AlertWarning,
		Title:  "Gastos muito altos",
		Month:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("valid alert error = %v", err)
	}

	badType := valid
	badType.Type = "panic"
	if err := badType.Validate(); !errors.Is(err, ErrInvalidAlertType) {
		t.Errorf("bad type error = %v, want ErrInvalidAlertType", err)
	}

	noTitle := valid
	noTitle.Title = "   "
	if err := noTitle.Validate(); err == nil {
		t.Error("blank title should be invalid")
	}
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  time.Time
	}{
		{
			name:  "mid month",
			input: time.Date(2025, 8, 15, 13, 45, 0, 0, time.UTC),
			want:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "already first",
			input: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "non-UTC location",
			input: time.Date(2025, 8, 31, 23, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
			want:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthKey(tt.input); !got.Equal(tt.want) {
				t.Errorf("MonthKey(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2025-08")
	if err != nil {
		t.Fatalf("ParseMonth error = %v", err)
	}
	want := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseMonth = %v, want %v", got, want)
	}

	for _, bad := range []string{"", "agosto", "2025-13", "2025-08-15", "08-2025"} {
		if _, err := ParseMonth(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseMonth(%q) error = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-08-15")
	if err != nil {
		t.Fatalf("ParseDate error = %v", err)
	}
	if got.Day() != 15 || got.Month() != time.August {
		t.Errorf("ParseDate = %v", got)
	}

	if _, err := ParseDate("15/08/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate slash format error = %v, want ErrInvalidDate", err)
	}
}
