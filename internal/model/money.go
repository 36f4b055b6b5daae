package model

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// AmountWidth is the column width of every numeric field in a record.
const AmountWidth = 15

// ParseMoney parses a user or file supplied amount such as "100.50" or "1e3".
// A comma is accepted as the decimal separator.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrValidation)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	return d, nil
}

// FormatMoney renders an amount with two decimals for display.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// encodeAmount right-justifies d in a column of AmountWidth characters.
func encodeAmount(d decimal.Decimal) (string, error) {
	s := d.String()
	if utf8.RuneCountInString(s) > AmountWidth {
		return "", fmt.Errorf("%w: %s", ErrFieldOverflow, s)
	}
	return fmt.Sprintf("%*s", AmountWidth, s), nil
}

// padRight left-justifies s in a column of width characters.
func padRight(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}
