// Package money parses and formats Indonesian-locale currency amounts.
//
// Amounts are typed with "." as the thousands separator and "," as the
// decimal separator ("1.500.000,50"). All arithmetic is done on
// decimal.Decimal; binary floating point is never used for currency.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned by ParseAmountStrict for input that is not
// a non-negative amount.
var ErrInvalidAmount = errors.New("invalid amount")

const (
	groupSep   = "."
	decimalSep = ","
	symbol     = "Rp"
)

// ParseAmount parses a locale-formatted amount. It fails closed: empty,
// malformed or negative input yields zero so that balance computation
// stays total.
func ParseAmount(s string) decimal.Decimal {
	d, err := ParseAmountStrict(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseAmountStrict parses a locale-formatted amount. Empty input is zero.
func ParseAmountStrict(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, symbol))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, nil
	}

	intPart, fracPart, err := split(s)
	if err != nil {
		return decimal.Zero, err
	}
	if intPart == "" {
		intPart = "0"
	}
	if !digits(intPart) || !digits(fracPart) {
		return decimal.Zero, ErrInvalidAmount
	}

	num := intPart
	if fracPart != "" {
		num += "." + fracPart
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// split separates the integer digits from the fraction digits, removing
// grouping separators. With a "," present every "." is grouping. Without
// one, dots are grouping only when each group after the first has exactly
// three digits; a single dot followed by one, two or four or more digits
// is a decimal point, so raw numeric input like "1000.50" parses as
// expected. "1000.500" is neither and is invalid.
func split(s string) (intPart, fracPart string, err error) {
	if strings.Count(s, decimalSep) > 1 {
		return "", "", ErrInvalidAmount
	}
	if i := strings.Index(s, decimalSep); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
		if fracPart == "" {
			return "", "", ErrInvalidAmount
		}
		if !grouped(intPart) {
			return "", "", ErrInvalidAmount
		}
		return strings.ReplaceAll(intPart, groupSep, ""), fracPart, nil
	}

	if !strings.Contains(s, groupSep) {
		return s, "", nil
	}
	if grouped(s) {
		return strings.ReplaceAll(s, groupSep, ""), "", nil
	}
	parts := strings.Split(s, groupSep)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", ErrInvalidAmount
	}
	// Three digits after the dot read as grouping everywhere else, so a
	// malformed group is rejected rather than taken as a fraction.
	if len(parts[1]) == 3 {
		return "", "", ErrInvalidAmount
	}
	return parts[0], parts[1], nil
}

// grouped reports whether s uses well-formed thousands grouping (or none).
func grouped(s string) bool {
	if !strings.Contains(s, groupSep) {
		return true
	}
	parts := strings.Split(s, groupSep)
	if len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Format renders d with id-ID grouping: "1.000.000", "1.500,5".
// Whole amounts print without a fraction; others keep up to two places.
func Format(d decimal.Decimal) string {
	d = d.Round(2)
	neg := d.IsNegative()
	d = d.Abs()

	whole := d.Truncate(0)
	frac := d.Sub(whole)

	out := group(whole.String())
	if !frac.IsZero() {
		f := strings.TrimRight(frac.StringFixed(2)[2:], "0")
		out += decimalSep + f
	}
	if neg {
		out = "-" + out
	}
	return out
}

// Rupiah renders d as "Rp 1.000.000".
func Rupiah(d decimal.Decimal) string {
	return symbol + " " + Format(d)
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(groupSep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
