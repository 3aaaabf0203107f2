// Package core provides the domain types shared by storage, analysis and
// transport: monetary values, categories, expense/income/alert records and
// month keys.
//
// This file holds money parsing and formatting. All monetary arithmetic in
// the project runs on fixed-point decimals; float64 never touches a value.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxValue is a sanity ceiling on a single record, not a business rule.
var maxValue = decimal.NewFromInt(1_000_000)

// ParseAmount converts a decimal string to a monetary value with two decimal
// places. It accepts both dot (12.34) and comma (12,34) separators and
// performs half-up rounding on the third decimal place.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("12.346") -> 12.35, nil (rounds up)
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if err := ValidateValue(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateValue rejects negative values and amounts beyond the sanity
// ceiling. Zero is allowed; positivity requirements live on the record
// types that need them.
func ValidateValue(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrInvalidAmount
	}
	if d.GreaterThan(maxValue) {
		return ErrInvalidAmount
	}
	return nil
}

// FormatBRL renders a value with the currency prefix used in alert
// messages, e.g. "R$ 1234.56". Negative values keep their sign after the
// prefix, matching the original message copy.
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

// FormatPercent renders a percentage with one decimal place for embedding
// in alert text, e.g. "36.0".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1)
}
