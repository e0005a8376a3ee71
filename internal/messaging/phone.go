package messaging

import "strings"

// NormalizePhone strips a contact identifier down to digits only.
// WhatsApp ids arrive as "911234567890" or "+91 12345 67890"; spreadsheet
// uploads may carry separators. Both normalize to the same key.
func NormalizePhone(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	var digits strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}
