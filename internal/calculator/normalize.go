package calculator

import (
	"math"
	"strings"

	"github.com/mmynk/invoicer/internal/models"
)

// Normalize coalesces untrusted input into something the calculator can
// work with. It is applied once at the boundary, before Recalculate and
// Validate, and never inside the arithmetic.
//
// Non-finite numbers become zero, text fields are trimmed, a row that was
// added but never touched gets the editor's default quantity of 1, and an
// empty payment status becomes PENDING.
func Normalize(inv models.Invoice) models.Invoice {
	out := inv
	out.CustomerDetails = strings.TrimSpace(inv.CustomerDetails)
	out.SellerDetails = strings.TrimSpace(inv.SellerDetails)
	out.CustomerEmail = strings.TrimSpace(inv.CustomerEmail)
	out.DocumentType = models.DocumentType(strings.TrimSpace(string(inv.DocumentType)))
	out.PaymentMethod = models.PaymentMethod(strings.TrimSpace(string(inv.PaymentMethod)))
	out.PaymentStatus = models.PaymentStatus(strings.ToUpper(strings.TrimSpace(string(inv.PaymentStatus))))
	if out.PaymentStatus == "" {
		out.PaymentStatus = models.StatusPending
	}

	out.TaxPercent = finite(inv.TaxPercent)
	out.DiscountPercent = finite(inv.DiscountPercent)
	out.ShippingCharge = finite(inv.ShippingCharge)
	out.SubTotal = finite(inv.SubTotal)
	out.DiscountAmount = finite(inv.DiscountAmount)
	out.TaxAmount = finite(inv.TaxAmount)
	out.TotalAmount = finite(inv.TotalAmount)

	if inv.Items != nil {
		out.Items = make([]models.Item, len(inv.Items))
		for i, item := range inv.Items {
			item.Description = strings.TrimSpace(item.Description)
			item.Quantity = finite(item.Quantity)
			item.UnitPrice = finite(item.UnitPrice)
			item.LineAmount = finite(item.LineAmount)
			if item.Description == "" && item.Quantity == 0 && item.UnitPrice == 0 {
				item.Quantity = 1
			}
			out.Items[i] = item
		}
	}
	return out
}

// finite maps NaN and ±Inf to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
