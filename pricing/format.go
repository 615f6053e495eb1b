package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an amount the way listings show it, e.g.
// "Rp 1.250.000.000".
func FormatRupiah(amount float64) string {
	return rupiahPrinter.Sprintf("Rp %.0f", amount)
}
