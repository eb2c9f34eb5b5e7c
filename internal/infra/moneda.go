package infra

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCOP renders a monetary value the Colombian way: dot-separated miles,
// no cents ($ 1.234.567). Cents are dropped, not rounded up.
func FormatCOP(v decimal.Decimal) string {
	neg := v.IsNegative()
	entero := v.Abs().Truncate(0).String()

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("$ ")
	for i, d := range entero {
		if i > 0 && (len(entero)-i)%3 == 0 {
			b.WriteRune('.')
		}
		b.WriteRune(d)
	}
	return b.String()
}
