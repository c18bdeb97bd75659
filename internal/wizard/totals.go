package wizard

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Totals are the derived monetary fields. They are recomputed from the
// current item list on every call, never cached, so they cannot drift.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	TaxAmount      float64 `json:"taxAmount"`
	DiscountAmount float64 `json:"discountAmount"`
	Total          float64 `json:"total"`
	FormattedTotal string  `json:"formattedTotal"`
}

// Totals derives subtotal, tax and grand total from the item list.
func (d *Document) Totals() Totals {
	var subtotal float64
	for _, item := range d.Items {
		subtotal += item.Amount()
	}
	taxAmount := subtotal * d.TaxPercent / 100
	total := subtotal + taxAmount - d.DiscountAmount
	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      taxAmount,
		DiscountAmount: d.DiscountAmount,
		Total:          total,
		FormattedTotal: FormatINR(total),
	}
}

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders an amount as whole rupees with Indian digit
// grouping. The underlying float keeps full precision; rounding only
// happens here at display time.
func FormatINR(amount float64) string {
	return inrPrinter.Sprintf("₹%v", number.Decimal(int64(math.Round(amount))))
}
