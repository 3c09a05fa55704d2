package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CleanAmount converts messy currency text from spreadsheet cells to a
// decimal. It handles values like "$ -   ", "1.234,56", "50,000" and plain
// numbers. Unparseable input yields zero rather than an error, matching how
// arqueo sheets encode "no value".
func CleanAmount(val string) decimal.Decimal {
	s := strings.TrimSpace(val)
	if s == "" {
		return decimal.Zero
	}

	// Keep only digits, separators and the sign.
	var b strings.Builder
	for _, c := range s {
		if (c >= '0' && c <= '9') || c == '.' || c == ',' || c == '-' {
			b.WriteRune(c)
		}
	}
	cleaned := b.String()

	switch cleaned {
	case "", "-", ".", ",":
		return decimal.Zero
	}

	dot := strings.LastIndex(cleaned, ".")
	comma := strings.LastIndex(cleaned, ",")
	switch {
	case dot >= 0 && comma >= 0:
		// Both present: the later one is the decimal point, the other is a
		// thousands separator.
		if comma > dot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case comma >= 0:
		if strings.Count(cleaned, ",") > 1 {
			// Multiple commas can only be thousands separators.
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
