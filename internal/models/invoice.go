package models

import "time"

// DocumentType is the kind of document printed in the header.
type DocumentType string

const (
	DocumentInvoice  DocumentType = "Invoice"
	DocumentEstimate DocumentType = "Estimate"
	DocumentReceipt  DocumentType = "Receipt"
)

// DocumentTypes lists the accepted document types in display order.
var DocumentTypes = []DocumentType{DocumentInvoice, DocumentEstimate, DocumentReceipt}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentCard PaymentMethod = "Debit / Credit Card"
	PaymentUPI  PaymentMethod = "UPI"
	PaymentDue  PaymentMethod = "Payment Due"
)

// PaymentMethods lists the accepted payment methods in display order.
var PaymentMethods = []PaymentMethod{PaymentDue, PaymentCash, PaymentUPI, PaymentCard}

// PaymentStatus tracks whether an invoice has been settled.
// It is unrelated to DocumentType: a Receipt may still be PENDING.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "PAID"
	StatusPending PaymentStatus = "PENDING"
	StatusOverdue PaymentStatus = "OVERDUE"
)

// PaymentStatuses lists the accepted payment statuses.
var PaymentStatuses = []PaymentStatus{StatusPaid, StatusPending, StatusOverdue}

// Invoice is a complete invoice record including its line items.
type Invoice struct {
	// ID is assigned by the store on creation. Zero means not yet saved.
	ID int64

	// OwnerID is the user who owns this invoice.
	OwnerID string

	// InvoiceNumber is the user-facing number printed on the document.
	// Unique per owner.
	InvoiceNumber int64

	DocumentType  DocumentType
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus

	// CustomerDetails and SellerDetails are free text, usually multi-line
	// name and address blocks.
	CustomerDetails string
	SellerDetails   string

	// CustomerEmail is optional.
	CustomerEmail string

	// Items in display order.
	Items []Item

	// IssueDate is a calendar date; only year, month and day are meaningful.
	IssueDate time.Time

	// TaxPercent and DiscountPercent are percentages (10 means 10%).
	TaxPercent      float64
	DiscountPercent float64

	// ShippingCharge is a flat amount added after tax.
	ShippingCharge float64

	// Derived fields, see package calculator.
	SubTotal       float64
	DiscountAmount float64
	TaxAmount      float64
	TotalAmount    float64

	// CreatedAt and UpdatedAt are Unix timestamps maintained by the store.
	CreatedAt int64
	UpdatedAt int64
}

// Item represents a single line item on an invoice.
type Item struct {
	Description string
	Quantity    float64
	UnitPrice   float64

	// LineAmount is always Quantity × UnitPrice.
	LineAmount float64
}

// NewItem returns a blank line item with the editor defaults.
func NewItem() Item {
	return Item{Quantity: 1}
}

// InvoiceSummary is the subset of an invoice shown on the dashboard.
type InvoiceSummary struct {
	ID              int64
	InvoiceNumber   int64
	DocumentType    DocumentType
	CustomerDetails string
	PaymentStatus   PaymentStatus
	TotalAmount     float64
	IssueDate       time.Time
	UpdatedAt       int64
}
