package util

import "strings"

// NormalizePhone rewrites an international-format MSISDN (leading 254, 12
// characters) to the canonical local format borrowers are stored under
// (leading 0). Any other shape fails normalization and the caller skips
// phone-based matching.
func NormalizePhone(msisdn string) (string, bool) {
	if len(msisdn) != 12 || !strings.HasPrefix(msisdn, "254") {
		return "", false
	}
	return "0" + msisdn[3:], true
}
