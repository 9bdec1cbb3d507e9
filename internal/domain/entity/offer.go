package entity

import (
	"fmt"
	"strings"
)

const offerBodyHeader = "OFFER DETAILS:"

// OfferDetails is the structured payload an offer message carries in its body
// text. It is not stored separately; the body is the wire format.
type OfferDetails struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// FormatOfferBody renders the offer block placed in an offer message body.
func FormatOfferBody(d OfferDetails) string {
	unit := d.Unit
	if unit == "" {
		unit = "unit"
	}
	return fmt.Sprintf(`%s
Product: %s
Quantity: %d %s
Offered Price: $%.2f per %s
Total: $%.2f

I'm interested in purchasing this product. Please let me know if this offer works for you.`,
		offerBodyHeader, d.ProductName, d.Quantity, unit, d.UnitPrice, unit, d.Total)
}

// IsOfferBody reports whether a message body carries an offer block.
func IsOfferBody(body string) bool {
	return strings.HasPrefix(strings.TrimSpace(body), offerBodyHeader)
}
