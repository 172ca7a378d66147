package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders amount with two decimals and thousands separators,
// e.g. 1234567.891 -> "1,234,567.89".
func FormatMoney(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	parts := strings.SplitN(fixed, ".", 2)
	integerPart := parts[0]

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return sign + strings.Join(groups, ",") + "." + parts[1]
}
