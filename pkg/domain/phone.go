package domain

import "strings"

// NormalizePhoneNumber strips formatting characters and prefixes a bare
// national number with +1. Numbers that already carry a + keep their
// country code.
func NormalizePhoneNumber(raw string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return ""
	}
	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	return "+1" + cleaned
}
