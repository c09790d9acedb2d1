// Package models defines the core domain models for Invoicer.
//
// # Models
//
//   - Invoice: an invoice, estimate or receipt owned by one user
//   - Item: a line item on an invoice
//   - InvoiceSummary: the dashboard projection of an invoice
//   - User: a registered account that owns invoices
//
// # Derived fields
//
// Item.LineAmount and the Invoice fields SubTotal, DiscountAmount, TaxAmount
// and TotalAmount are derived. They are never entered by a user and are always
// recomputed by the calculator package before an invoice is stored or
// rendered. Values read back from storage are informational only.
//
// # Relationships
//
// Invoices reference their owner by user ID string rather than by pointer.
// Items belong to exactly one invoice and keep their insertion order.
package models
