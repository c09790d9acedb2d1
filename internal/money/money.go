// Package money formats amounts and dates for printed documents.
package money

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts in one locale and currency.
// It is immutable and safe for concurrent use.
type Formatter struct {
	tag     language.Tag
	unit    currency.Unit
	printer *message.Printer
	symbol  string
}

// NewFormatter returns a Formatter for a BCP 47 locale such as "en-IN" and an
// ISO 4217 currency code such as "INR".
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	p := message.NewPrinter(tag)
	return &Formatter{
		tag:     tag,
		unit:    unit,
		printer: p,
		symbol:  p.Sprint(currency.NarrowSymbol(unit)),
	}, nil
}

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// Currency returns the ISO code of the formatter's currency.
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// Round rounds v to two decimal places, halves away from zero. NaN and ±Inf
// have no decimal form and round to zero.
func Round(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}

// Number formats v rounded to two places with the locale's digit grouping,
// e.g. "1,234.50".
func (f *Formatter) Number(v float64) string {
	return f.printer.Sprint(number.Decimal(Round(v).InexactFloat64(), number.Scale(2)))
}

// Symbol returns the locale's narrow currency symbol, e.g. "₹" or "$".
func (f *Formatter) Symbol() string {
	return f.symbol
}

// Amount formats v as symbol followed by Number.
func (f *Formatter) Amount(v float64) string {
	return f.symbol + f.Number(v)
}

// PDFSymbol returns a currency prefix that the core PDF fonts can draw. The
// narrow symbol is used when it exists in Windows-1252; otherwise the ISO code
// and a space, e.g. "INR ".
func (f *Formatter) PDFSymbol() string {
	if encodable(f.symbol) {
		return f.symbol
	}
	return f.unit.String() + " "
}

func encodable(s string) bool {
	enc := charmap.Windows1252
	for _, r := range s {
		if _, ok := enc.EncodeRune(r); !ok {
			return false
		}
	}
	return s != ""
}

// dayFirst lists regions that write dates as day/month/year.
var dayFirst = map[string]bool{
	"IN": true, "GB": true, "AU": true, "NZ": true, "IE": true,
	"ZA": true, "SG": true, "FR": true, "DE": true, "ES": true, "IT": true,
}

// Date formats t as a numeric calendar date in the locale's customary order:
// 5/1/2026 for en-IN, 1/5/2026 for en-US, 2026-01-05 elsewhere.
func (f *Formatter) Date(t time.Time) string {
	region, _ := f.tag.Region()
	switch code := strings.ToUpper(region.String()); {
	case code == "US":
		return t.Format("1/2/2006")
	case dayFirst[code]:
		return t.Format("2/1/2006")
	default:
		return t.Format("2006-01-02")
	}
}
