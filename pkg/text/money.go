package text

import (
	"strconv"
	"strings"
)

// Currency is appended to every formatted amount.
const Currency = "so'm"

// Money formats an amount with thousands separators, e.g. "250,000 so'm".
func Money(amount int64) string {
	return Amount(amount) + " " + Currency
}

// Amount formats an amount with thousands separators and no currency.
func Amount(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	sign := ""
	if amount < 0 {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
