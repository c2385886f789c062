package utils

import "strings"

// ValidCardNumber reports whether pan passes the Luhn check. Spaces and
// dashes are ignored.
func ValidCardNumber(pan string) bool {
	pan = normalizePAN(pan)
	if len(pan) < 12 || len(pan) > 19 {
		return false
	}

	var sum int
	shouldDouble := false
	for i := len(pan) - 1; i >= 0; i-- {
		if pan[i] < '0' || pan[i] > '9' {
			return false
		}
		digit := int(pan[i] - '0')
		if shouldDouble {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		shouldDouble = !shouldDouble
	}
	return sum%10 == 0
}

func normalizePAN(pan string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(pan)
}
