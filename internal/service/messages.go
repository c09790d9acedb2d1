package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
)

// dateLayout is the wire format of issue dates.
const dateLayout = "2006-01-02"

// LenientNumber decodes whatever a form field sent into a float. Numbers and
// numeric strings are taken as is; empty strings, null, booleans and junk
// become 0. Non-finite values are encoded as 0.
type LenientNumber float64

func (n *LenientNumber) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = LenientNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = LenientNumber(f)
			return nil
		}
	}
	*n = 0
	return nil
}

func (n LenientNumber) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

// Item is a line item on the wire.
type Item struct {
	Description string        `json:"description"`
	Quantity    LenientNumber `json:"quantity"`
	UnitPrice   LenientNumber `json:"unitPrice"`
	LineAmount  LenientNumber `json:"lineAmount"`
}

// Invoice is the full invoice record on the wire. Derived fields sent by a
// client are ignored by every write.
type Invoice struct {
	ID              int64         `json:"id,omitempty"`
	InvoiceNumber   LenientNumber `json:"invoiceNumber"`
	DocumentType    string        `json:"documentType"`
	PaymentMethod   string        `json:"paymentMethod"`
	PaymentStatus   string        `json:"paymentStatus"`
	CustomerDetails string        `json:"customerDetails"`
	SellerDetails   string        `json:"sellerDetails"`
	CustomerEmail   string        `json:"customerEmail,omitempty"`
	Items           []Item        `json:"items"`
	IssueDate       string        `json:"issueDate"`
	TaxPercent      LenientNumber `json:"taxPercent"`
	DiscountPercent LenientNumber `json:"discountPercent"`
	ShippingCharge  LenientNumber `json:"shippingCharge"`
	SubTotal        LenientNumber `json:"subTotal"`
	DiscountAmount  LenientNumber `json:"discountAmount"`
	TaxAmount       LenientNumber `json:"taxAmount"`
	TotalAmount     LenientNumber `json:"totalAmount"`
	CreatedAt       string        `json:"createdAt,omitempty"`
	UpdatedAt       string        `json:"updatedAt,omitempty"`
}

// InvoiceSummary is one dashboard row.
type InvoiceSummary struct {
	ID              int64   `json:"id"`
	InvoiceNumber   int64   `json:"invoiceNumber"`
	DocumentType    string  `json:"documentType"`
	CustomerDetails string  `json:"customerDetails"`
	PaymentStatus   string  `json:"paymentStatus"`
	TotalAmount     float64 `json:"totalAmount"`
	IssueDate       string  `json:"issueDate"`
	UpdatedAt       string  `json:"updatedAt"`
}

// Totals are the derived amounts of an invoice.
type Totals struct {
	LineAmounts    []float64 `json:"lineAmounts"`
	SubTotal       float64   `json:"subTotal"`
	DiscountAmount float64   `json:"discountAmount"`
	TaxableAmount  float64   `json:"taxableAmount"`
	TaxAmount      float64   `json:"taxAmount"`
	TotalAmount    float64   `json:"totalAmount"`
}

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

type CalculateTotalsRequest struct {
	Invoice Invoice `json:"invoice"`
}

type CalculateTotalsResponse struct {
	Totals Totals `json:"totals"`
}

type ValidateInvoiceRequest struct {
	Invoice Invoice `json:"invoice"`
}

type ValidateInvoiceResponse struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

type CreateInvoiceRequest struct {
	Invoice Invoice `json:"invoice"`
}

type CreateInvoiceResponse struct {
	Invoice Invoice `json:"invoice"`
}

type UpdateInvoiceRequest struct {
	Invoice Invoice `json:"invoice"`
}

type UpdateInvoiceResponse struct {
	Invoice Invoice `json:"invoice"`
}

type GetInvoiceRequest struct {
	ID int64 `json:"id"`
}

type GetInvoiceResponse struct {
	Invoice Invoice `json:"invoice"`
}

type DeleteInvoiceRequest struct {
	ID int64 `json:"id"`
}

type DeleteInvoiceResponse struct{}

type ListInvoicesRequest struct{}

type ListInvoicesResponse struct {
	Invoices []InvoiceSummary `json:"invoices"`
}

// RenderInvoiceRequest names a stored invoice by ID, or carries one inline.
// Invoice wins when both are set.
type RenderInvoiceRequest struct {
	ID      int64    `json:"id,omitempty"`
	Invoice *Invoice `json:"invoice,omitempty"`
}

type RenderInvoiceResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Document    []byte `json:"document"`
}

// toModel converts a wire invoice. A missing issue date becomes today.
func toModel(in Invoice, today time.Time) (models.Invoice, error) {
	issued := today
	if s := strings.TrimSpace(in.IssueDate); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return models.Invoice{}, fmt.Errorf("issueDate %q: want YYYY-MM-DD", in.IssueDate)
		}
		issued = t
	}

	number, err := wholeNumber(float64(in.InvoiceNumber))
	if err != nil {
		return models.Invoice{}, err
	}

	items := make([]models.Item, len(in.Items))
	for i, it := range in.Items {
		items[i] = models.Item{
			Description: it.Description,
			Quantity:    float64(it.Quantity),
			UnitPrice:   float64(it.UnitPrice),
			LineAmount:  float64(it.LineAmount),
		}
	}

	return models.Invoice{
		ID:              in.ID,
		InvoiceNumber:   number,
		DocumentType:    models.DocumentType(in.DocumentType),
		PaymentMethod:   models.PaymentMethod(in.PaymentMethod),
		PaymentStatus:   models.PaymentStatus(in.PaymentStatus),
		CustomerDetails: in.CustomerDetails,
		SellerDetails:   in.SellerDetails,
		CustomerEmail:   in.CustomerEmail,
		Items:           items,
		IssueDate:       issued,
		TaxPercent:      float64(in.TaxPercent),
		DiscountPercent: float64(in.DiscountPercent),
		ShippingCharge:  float64(in.ShippingCharge),
		SubTotal:        float64(in.SubTotal),
		DiscountAmount:  float64(in.DiscountAmount),
		TaxAmount:       float64(in.TaxAmount),
		TotalAmount:     float64(in.TotalAmount),
	}, nil
}

// maxWholeNumber is the largest integer a float64 holds exactly.
const maxWholeNumber = 1 << 53

func wholeNumber(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxWholeNumber {
		return 0, fmt.Errorf("invoiceNumber %v: want a whole number", f)
	}
	return int64(f), nil
}

func fromModel(inv models.Invoice) Invoice {
	items := make([]Item, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = Item{
			Description: it.Description,
			Quantity:    LenientNumber(it.Quantity),
			UnitPrice:   LenientNumber(it.UnitPrice),
			LineAmount:  LenientNumber(it.LineAmount),
		}
	}
	return Invoice{
		ID:              inv.ID,
		InvoiceNumber:   LenientNumber(inv.InvoiceNumber),
		DocumentType:    string(inv.DocumentType),
		PaymentMethod:   string(inv.PaymentMethod),
		PaymentStatus:   string(inv.PaymentStatus),
		CustomerDetails: inv.CustomerDetails,
		SellerDetails:   inv.SellerDetails,
		CustomerEmail:   inv.CustomerEmail,
		Items:           items,
		IssueDate:       inv.IssueDate.Format(dateLayout),
		TaxPercent:      LenientNumber(inv.TaxPercent),
		DiscountPercent: LenientNumber(inv.DiscountPercent),
		ShippingCharge:  LenientNumber(inv.ShippingCharge),
		SubTotal:        LenientNumber(inv.SubTotal),
		DiscountAmount:  LenientNumber(inv.DiscountAmount),
		TaxAmount:       LenientNumber(inv.TaxAmount),
		TotalAmount:     LenientNumber(inv.TotalAmount),
		CreatedAt:       unixString(inv.CreatedAt),
		UpdatedAt:       unixString(inv.UpdatedAt),
	}
}

func fromSummary(s models.InvoiceSummary) InvoiceSummary {
	return InvoiceSummary{
		ID:              s.ID,
		InvoiceNumber:   s.InvoiceNumber,
		DocumentType:    string(s.DocumentType),
		CustomerDetails: s.CustomerDetails,
		PaymentStatus:   string(s.PaymentStatus),
		TotalAmount:     s.TotalAmount,
		IssueDate:       s.IssueDate.Format(dateLayout),
		UpdatedAt:       unixString(s.UpdatedAt),
	}
}

func fromUser(u *models.User) *User {
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   unixString(u.CreatedAt),
	}
}

// totalsOf derives the totals of inv. ok is false when an amount overflows
// a float64.
func totalsOf(inv models.Invoice) (_ Totals, ok bool) {
	t := calculator.Compute(inv)
	ok = t.Finite()
	lines := make([]float64, len(inv.Items))
	for i, it := range inv.Items {
		lines[i] = calculator.LineAmount(it.Quantity, it.UnitPrice)
		if math.IsInf(lines[i], 0) || math.IsNaN(lines[i]) {
			ok = false
		}
	}
	return Totals{
		LineAmounts:    lines,
		SubTotal:       t.SubTotal,
		DiscountAmount: t.DiscountAmount,
		TaxableAmount:  t.TaxableAmount,
		TaxAmount:      t.TaxAmount,
		TotalAmount:    t.TotalAmount,
	}, ok
}

func unixString(sec int64) string {
	if sec == 0 {
		return ""
	}
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}
