package calculator

import (
	"fmt"
	"math"

	"github.com/mmynk/invoicer/internal/models"
)

// driftTolerance is half a cent; anything smaller is float noise.
const driftTolerance = 0.005

// Drift describes one stored derived field that disagrees with the value
// Recalculate produces.
type Drift struct {
	Field    string
	Stored   float64
	Expected float64
}

func (d Drift) String() string {
	return fmt.Sprintf("%s: stored %.4f, expected %.4f", d.Field, d.Stored, d.Expected)
}

// CheckDrift compares the derived fields carried by stored against a fresh
// recomputation. The recomputed values are authoritative; the result only
// says which stored values were stale.
func CheckDrift(stored models.Invoice) []Drift {
	fresh := Recalculate(stored)

	var drifts []Drift
	check := func(field string, got, want float64) {
		if math.Abs(got-want) > driftTolerance {
			drifts = append(drifts, Drift{Field: field, Stored: got, Expected: want})
		}
	}

	for i := range stored.Items {
		check(fmt.Sprintf("items[%d].lineAmount", i), stored.Items[i].LineAmount, fresh.Items[i].LineAmount)
	}
	check("subTotal", stored.SubTotal, fresh.SubTotal)
	check("discountAmount", stored.DiscountAmount, fresh.DiscountAmount)
	check("taxAmount", stored.TaxAmount, fresh.TaxAmount)
	check("totalAmount", stored.TotalAmount, fresh.TotalAmount)
	return drifts
}
