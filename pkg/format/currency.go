// Package format renders currency amounts for humans.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Dollars returns a whole-dollar currency string (e.g., "$336,000").
func Dollars(amount float64) string {
	whole := math.Round(math.Abs(amount))
	formatted := groupThousands(strconv.FormatFloat(whole, 'f', 0, 64))
	if amount < 0 && whole != 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Percent renders a rate without trailing zeros (e.g., "6.8%").
func Percent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := groupThousands(parts[0])
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}
	return intPart + "." + decPart
}

func groupThousands(intPart string) string {
	if len(intPart) <= 3 {
		return intPart
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
