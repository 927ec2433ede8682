package utils

import "strings"

// NormalizePhone strips provider prefixes and formatting from a phone number.
// WhatsApp ids arrive as digits only ("5511999990000"); Twilio sends
// "whatsapp:+5511999990000".
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "whatsapp:")

	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
