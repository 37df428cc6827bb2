// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing amounts from user input (form strings
// or JSON values) and folding transactions into a balance.
package core

import (
	"bytes"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Thousands
// grouping is not supported: more than one separator, or a comma followed by
// exactly three digits, is rejected rather than guessed. Signs are rejected:
// the direction of a transaction is carried by its type, never by the amount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("1,000") -> 0, ErrInvalidAmount
//	ParseAmount("-5")    -> 0, ErrInvalidAmount
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",")+strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	// "1,000" reads as a thousands separator as easily as a decimal comma.
	if whole, frac, ok := strings.Cut(s, ","); ok && len(frac) == 3 && strings.TrimLeft(whole, "0") != "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// AmountFromJSON parses a JSON value that is either a number or a numeric string.
// Exponent notation is rejected on both paths. Anything else (null, booleans,
// objects, non-numeric strings) is ErrInvalidAmount.
func AmountFromJSON(raw []byte) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, ErrInvalidAmount
	}
	if raw[0] == '"' {
		if len(raw) < 2 || raw[len(raw)-1] != '"' {
			return decimal.Zero, ErrInvalidAmount
		}
		return ParseAmount(string(raw[1 : len(raw)-1]))
	}
	if bytes.ContainsAny(raw, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (taken as UTC midnight).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// Balance folds transactions into one signed total: income adds, expense subtracts.
// Decimal addition is exact, so the result does not depend on order.
func Balance(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Signed())
	}
	return total
}
