package helpers

import (
	"fmt"
	"math"
)

// FormatRupee formats an amount as whole rupees with Indian digit grouping,
// e.g. 1234567 -> "₹12,34,567".
func FormatRupee(amount float64) string {
	value := int64(math.Round(amount))

	// Handle negative numbers
	negative := value < 0
	if negative {
		value = -value
	}

	str := fmt.Sprintf("%d", value)
	if len(str) > 3 {
		// Last three digits form one group, the rest are grouped in pairs.
		head, tail := str[:len(str)-3], str[len(str)-3:]
		var result string
		for i, digit := range head {
			if i > 0 && (len(head)-i)%2 == 0 {
				result += ","
			}
			result += string(digit)
		}
		str = result + "," + tail
	}

	if negative {
		return "-₹" + str
	}
	return "₹" + str
}

// FormatSignedRupee prefixes non-negative amounts with "+".
func FormatSignedRupee(amount float64) string {
	if math.Round(amount) >= 0 {
		return "+" + FormatRupee(amount)
	}
	return FormatRupee(amount)
}
