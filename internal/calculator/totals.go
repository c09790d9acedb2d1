// Package calculator derives invoice totals and decides whether an invoice is
// complete enough to save or render.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Totals holds the derived amounts of an invoice.
type Totals struct {
	SubTotal       float64
	DiscountAmount float64
	TaxableAmount  float64
	TaxAmount      float64
	TotalAmount    float64
}

// Finite reports whether every amount fits in a float64.
func (t Totals) Finite() bool {
	for _, v := range []float64{t.SubTotal, t.DiscountAmount, t.TaxableAmount, t.TaxAmount, t.TotalAmount} {
		if finite(v) != v {
			return false
		}
	}
	return true
}

// LineAmount returns quantity × unit price.
func LineAmount(quantity, unitPrice float64) float64 {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice)).InexactFloat64()
}

// Compute derives the totals of an invoice from its raw inputs.
//
// The steps run in a fixed order because the percentages compound:
//
//	subtotal = Σ quantity × unitPrice
//	discount = subtotal × discount% / 100
//	taxable  = subtotal − discount
//	tax      = taxable × tax% / 100
//	total    = taxable + tax + shipping
//
// Stored line amounts are ignored; the subtotal is always rebuilt from
// quantity and price.
func Compute(inv models.Invoice) Totals {
	subTotal := decimal.Zero
	for _, item := range inv.Items {
		qty := decimal.NewFromFloat(finite(item.Quantity))
		price := decimal.NewFromFloat(finite(item.UnitPrice))
		subTotal = subTotal.Add(qty.Mul(price))
	}

	discount := subTotal.Mul(decimal.NewFromFloat(finite(inv.DiscountPercent))).Div(hundred)
	taxable := subTotal.Sub(discount)
	tax := taxable.Mul(decimal.NewFromFloat(finite(inv.TaxPercent))).Div(hundred)
	total := taxable.Add(tax).Add(decimal.NewFromFloat(finite(inv.ShippingCharge)))

	return Totals{
		SubTotal:       subTotal.InexactFloat64(),
		DiscountAmount: discount.InexactFloat64(),
		TaxableAmount:  taxable.InexactFloat64(),
		TaxAmount:      tax.InexactFloat64(),
		TotalAmount:    total.InexactFloat64(),
	}
}

// Recalculate returns a copy of inv with every line amount and the four
// derived invoice fields recomputed. All other fields are left as they are
// and inv itself is not modified, so it is safe to call on every edit.
func Recalculate(inv models.Invoice) models.Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = make([]models.Item, len(inv.Items))
		for i, item := range inv.Items {
			item.LineAmount = LineAmount(finite(item.Quantity), finite(item.UnitPrice))
			out.Items[i] = item
		}
	}

	t := Compute(inv)
	out.SubTotal = t.SubTotal
	out.DiscountAmount = t.DiscountAmount
	out.TaxAmount = t.TaxAmount
	out.TotalAmount = t.TotalAmount
	return out
}
