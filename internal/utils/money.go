package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RoundUpAmount rounds to the next whole shilling. Daraja rejects fractional
// amounts, so 500.4 is charged as 501.
func RoundUpAmount(amount float64) int64 {
	if amount <= 0 {
		return 0
	}
	// 500.00000001 from float math should not become 501
	return int64(math.Ceil(math.Round(amount*100) / 100))
}

// FormatKES renders an amount as "KES 1,250.00".
func FormatKES(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	return fmt.Sprintf("%sKES %s.%02d", sign, formatThousand(cents/100), cents%100)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
