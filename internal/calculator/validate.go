package calculator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/invoicer/internal/models"
)

// ValidationError lists every reason an invoice was rejected by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invoice incomplete: " + strings.Join(e.Problems, "; ")
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// submission is the shape the struct validator checks. Text is trimmed
// before it is copied in so that whitespace-only fields count as empty.
type submission struct {
	InvoiceNumber   int64  `validate:"gt=0"`
	DocumentType    string `validate:"required,doctype"`
	PaymentMethod   string `validate:"required,paymethod"`
	PaymentStatus   string `validate:"required,paystatus"`
	CustomerDetails string `validate:"required"`
	SellerDetails   string `validate:"required"`
	CustomerEmail   string `validate:"omitempty,email"`
	ItemCount       int    `validate:"gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "doctype", oneOf(models.DocumentTypes))
	mustRegister(v, "paymethod", oneOf(models.PaymentMethods))
	mustRegister(v, "paystatus", oneOf(models.PaymentStatuses))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func oneOf[T ~string](allowed []T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, a := range allowed {
			if string(a) == s {
				return true
			}
		}
		return false
	}
}

// messages maps struct field names to user-facing text.
var messages = map[string]string{
	"InvoiceNumber":   "invoice number must be a positive number",
	"DocumentType":    "document type must be one of Invoice, Estimate, Receipt",
	"PaymentMethod":   "payment method must be one of Payment Due, Cash, UPI, Debit / Credit Card",
	"PaymentStatus":   "payment status must be one of PAID, PENDING, OVERDUE",
	"CustomerDetails": "customer details are required",
	"SellerDetails":   "seller details are required",
	"CustomerEmail":   "customer email is not a valid address",
	"ItemCount":       "at least one item is required",
}

// Validate is the submit-time gate used before an invoice is saved or
// rendered. It returns a *ValidationError listing every problem found, or
// nil when the invoice is complete. Stored totals are not looked at, but
// the recomputed ones must be representable.
func Validate(inv models.Invoice) error {
	sub := submission{
		InvoiceNumber:   inv.InvoiceNumber,
		DocumentType:    strings.TrimSpace(string(inv.DocumentType)),
		PaymentMethod:   strings.TrimSpace(string(inv.PaymentMethod)),
		PaymentStatus:   strings.TrimSpace(string(inv.PaymentStatus)),
		CustomerDetails: strings.TrimSpace(inv.CustomerDetails),
		SellerDetails:   strings.TrimSpace(inv.SellerDetails),
		CustomerEmail:   strings.TrimSpace(inv.CustomerEmail),
		ItemCount:       len(inv.Items),
	}

	var problems []string
	if err := validate.Struct(sub); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate invoice: %w", err)
		}
		for _, fe := range fieldErrs {
			msg, ok := messages[fe.Field()]
			if !ok {
				msg = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
			}
			problems = append(problems, msg)
		}
	}

	if len(inv.Items) > 0 && !hasCompleteItem(inv.Items) {
		problems = append(problems, "at least one item needs a description, a positive quantity and a positive price")
	}

	if !computable(inv) {
		problems = append(problems, "amounts are too large to total")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// computable reports whether every line amount and total of inv is finite.
func computable(inv models.Invoice) bool {
	for _, item := range inv.Items {
		amount := LineAmount(finite(item.Quantity), finite(item.UnitPrice))
		if finite(amount) != amount {
			return false
		}
	}
	return Compute(inv).Finite()
}

func hasCompleteItem(items []models.Item) bool {
	for _, item := range items {
		if strings.TrimSpace(item.Description) != "" && item.Quantity > 0 && item.UnitPrice > 0 {
			return true
		}
	}
	return false
}
