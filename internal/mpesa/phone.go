package mpesa

import (
	"strings"

	"flavorjunction/internal/utils"
)

const countryCode = "254"

// FormatPhoneNumber normalizes a Kenyan number to 254XXXXXXXXX: non-digits are
// dropped, then a leading 0 and a leading 254 are stripped before 254 is
// prepended. Applying it twice gives the same result.
func FormatPhoneNumber(raw string) string {
	p := utils.DigitsOnly(raw)
	p = strings.TrimPrefix(p, "0")
	p = strings.TrimPrefix(p, countryCode)
	return countryCode + p
}

// ValidPhoneNumber reports whether raw normalizes to a full 12-digit MSISDN.
func ValidPhoneNumber(raw string) bool {
	if utils.DigitsOnly(raw) == "" {
		return false
	}
	p := FormatPhoneNumber(raw)
	return len(p) == 12 && (p[3] == '7' || p[3] == '1')
}
