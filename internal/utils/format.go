package utils

import (
	"fmt"
	"strings"
)

// FormatVND renders a price as a grouped integer with the VND suffix,
// e.g. 12345678.9 → "12,345,678 VND".
func FormatVND(x float64) string {
	return groupDigits(int64(x)) + " VND"
}

// FormatTrieuVND renders a price already expressed in millions of VND,
// e.g. 25.0 → "25 Triệu".
func FormatTrieuVND(x float64) string {
	return groupDigits(int64(x)) + " Triệu"
}

func groupDigits(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
