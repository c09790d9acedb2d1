// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/invoicer/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another owner.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would violate a uniqueness rule,
	// such as a repeated invoice number for the same owner.
	ErrConflict = errors.New("conflict")
)

// Store defines the interface for invoice and user storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateInvoice persists a new invoice with its items.
	// The ID, CreatedAt and UpdatedAt fields are populated by the store.
	CreateInvoice(ctx context.Context, inv *models.Invoice) error

	// GetInvoice retrieves an invoice and its items in display order.
	GetInvoice(ctx context.Context, ownerID string, id int64) (*models.Invoice, error)

	// UpdateInvoice replaces an existing invoice and all of its items.
	// UpdatedAt is refreshed by the store.
	UpdateInvoice(ctx context.Context, inv *models.Invoice) error

	// DeleteInvoice removes an invoice together with its items.
	DeleteInvoice(ctx context.Context, ownerID string, id int64) error

	// ListInvoices returns the owner's invoices, most recently updated first.
	ListInvoices(ctx context.Context, ownerID string) ([]models.InvoiceSummary, error)

	// CreateUser persists a new user. ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil and no error when no user matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil and no error when no user matches.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
