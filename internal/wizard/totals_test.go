package wizard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTotalsDerivation(t *testing.T) {
	doc := NewDocument(KindQuotation)
	doc.Items = []LineItem{
		{ID: "a", Name: "Cement", Quantity: 100, UnitPrice: 410},
		{ID: "b", Name: "Steel", Quantity: 50, UnitPrice: 65},
	}
	doc.TaxPercent = 18
	doc.DiscountAmount = 250

	totals := doc.Totals()
	require.Equal(t, 44250.0, totals.Subtotal)
	require.InDelta(t, 7965.0, totals.TaxAmount, 0.001)
	require.Equal(t, 250.0, totals.DiscountAmount)
	require.InDelta(t, 51965.0, totals.Total, 0.001)
}

func TestTotalsRecomputeAfterEdit(t *testing.T) {
	doc := NewDocument(KindQuotation)
	require.NoError(t, doc.AddCustom("Sand", "1000"))
	doc.TaxPercent = 0

	require.Equal(t, 1000.0, doc.Totals().Total)

	require.NoError(t, doc.UpdateQuantity(doc.Items[0].ID, 2))
	require.Equal(t, 3000.0, doc.Totals().Total)
}

func TestDefaultTaxPercent(t *testing.T) {
	require.Equal(t, 18.0, NewDocument(KindQuotation).TaxPercent)
	require.Equal(t, 18.0, NewDocument(KindInvoice).TaxPercent)
}

func TestFormatINRUsesIndianGrouping(t *testing.T) {
	require.Equal(t, "₹0", FormatINR(0))
	require.Equal(t, "₹512", FormatINR(512.4))
	require.Equal(t, "₹1,000", FormatINR(1000))
	require.Equal(t, "₹51,965", FormatINR(51965))
	require.Equal(t, "₹12,34,568", FormatINR(1234567.89))
}
