package naming

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"attachbridge/internal/model"
)

var invoiceNumber = regexp.MustCompile(`\d{7}`)

// Classify derives the classification tag from a base filename.
// Rules are checked in order and the first match wins: seven consecutive
// digits mean an invoice, "inköp"/"inkop" a purchase order, anything else is
// treated as an order confirmation.
func Classify(filename string) model.ClassificationTag {
	// macOS hands out decomposed (NFD) names, where "ö" is "o" + U+0308.
	name := strings.ToLower(norm.NFC.String(filename))

	switch {
	case invoiceNumber.MatchString(name):
		return model.TagInvoice
	case strings.Contains(name, "inköp") || strings.Contains(name, "inkop"):
		return model.TagPurchaseOrder
	default:
		return model.TagOrderConfirmation
	}
}

// Ext returns the extension of a base filename including its leading dot.
// Leading dots of hidden files do not start an extension: Ext(".profile") is "".
func Ext(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return ""
	}
	return name[i:]
}
