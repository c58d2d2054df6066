package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders a money value with thousands separators and two
// decimals, e.g. 15000.5 -> "15,000.50".
func FormatAmount(amount float64) string {
	fixed := decimal.NewFromFloat(amount).Abs().StringFixed(2)
	integer, fraction, _ := strings.Cut(fixed, ".")

	sign := ""
	if amount < 0 && fixed != "0.00" {
		sign = "-"
	}

	var b strings.Builder
	for i, d := range integer {
		// Tambahkan pemisah ribuan
		if i > 0 && (len(integer)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String() + "." + fraction
}
