package utils

import "strings"

// IsValidDomainName is a conservative domain-shape check: alphanumerics,
// hyphens and dots only, each label at most 63 octets, and a final label of
// at least two alphabetic characters. It is deliberately stricter than the
// wire format (which only bounds label/name length) so it can double as a
// defense against delegation targets or HTTP query parameters that merely
// look like RDATA garbage rather than a dialable hostname.
func IsValidDomainName(name string) bool {
	labels := strings.Split(name, ".")
	if len(labels) == 0 {
		return false
	}
	for _, label := range labels {
		if label == "" || len(label) > 63 {
			return false
		}
		for _, r := range label {
			if !isAlphaNumericOrHyphen(r) {
				return false
			}
		}
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if !isAlpha(r) {
			return false
		}
	}
	return true
}

func isAlphaNumericOrHyphen(r rune) bool {
	return isAlpha(r) || (r >= '0' && r <= '9') || r == '-'
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
