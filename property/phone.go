package property

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizePhone converts Indonesian phone numbers to international
// format (62XXXXXXXXX). Returns "" if no digits remain.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	clean := digits.String()
	if clean == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(clean, "62"):
		return clean
	case strings.HasPrefix(clean, "0"):
		return "62" + clean[1:]
	default:
		return "62" + clean
	}
}

// WhatsAppLink builds a wa.me link with a prefilled inquiry message.
func WhatsAppLink(phone, sellerName, title string) string {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return ""
	}
	if sellerName == "" {
		sellerName = "Penjual"
	}
	message := fmt.Sprintf("Halo %s, saya tertarik dengan properti %s yang sedang dijual. Bisa kita diskusi lebih lanjut?", sellerName, title)
	return fmt.Sprintf("https://wa.me/%s?text=%s", normalized, url.QueryEscape(message))
}
