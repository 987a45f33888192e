package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// currency markers seen in platform exports; longer tokens first.
var currencyTokens = []string{"RMB", "rmb", "CNY", "cny", "¥", "￥", "$", "元"}

// ParseAmount parses user-formatted money such as "1,234.50", "¥-12", "￥ 3,000", "(12.00)".
//
// Blank input is zero. Anything that is not a number once currency markers, thousands separators
// and spaces are removed is rejected with ErrInvalidAmount; it is never coerced to zero.
func ParseAmount(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.ReplaceAll(value, "\u00a0", " "))
	if s == "" {
		return decimal.Zero, nil
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if neg {
		if d.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
		}
		d = d.Neg()
	}
	return d, nil
}
