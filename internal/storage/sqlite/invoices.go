package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

const dateLayout = "2006-01-02"

// CreateInvoice persists a new invoice and its items in one transaction.
func (s *SQLiteStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO invoices (
			owner_id, invoice_number, document_type, customer_details, seller_details,
			customer_email, payment_method, payment_status, issue_date,
			tax_percent, discount_percent, shipping_charge,
			sub_total, discount_amount, tax_amount, total_amount,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.OwnerID, inv.InvoiceNumber, inv.DocumentType, inv.CustomerDetails, inv.SellerDetails,
		inv.CustomerEmail, inv.PaymentMethod, inv.PaymentStatus, inv.IssueDate.Format(dateLayout),
		inv.TaxPercent, inv.DiscountPercent, inv.ShippingCharge,
		inv.SubTotal, inv.DiscountAmount, inv.TaxAmount, inv.TotalAmount,
		now, now,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("invoice number %d: %w", inv.InvoiceNumber, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read invoice id: %w", err)
	}

	if err := insertItems(ctx, tx, id, inv.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	inv.ID = id
	inv.CreatedAt = now
	inv.UpdatedAt = now
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, invoiceID int64, items []models.Item) error {
	for i, item := range items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price, line_amount) VALUES (?, ?, ?, ?, ?, ?)",
			invoiceID, i, item.Description, item.Quantity, item.UnitPrice, item.LineAmount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}
	return nil
}

// GetInvoice retrieves an invoice by ID, including all items in display order.
func (s *SQLiteStore) GetInvoice(ctx context.Context, ownerID string, id int64) (*models.Invoice, error) {
	inv := &models.Invoice{}
	var issueDate string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, invoice_number, document_type, customer_details, seller_details,
			customer_email, payment_method, payment_status, issue_date,
			tax_percent, discount_percent, shipping_charge,
			sub_total, discount_amount, tax_amount, total_amount,
			created_at, updated_at
		FROM invoices WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(
		&inv.ID, &inv.OwnerID, &inv.InvoiceNumber, &inv.DocumentType, &inv.CustomerDetails, &inv.SellerDetails,
		&inv.CustomerEmail, &inv.PaymentMethod, &inv.PaymentStatus, &issueDate,
		&inv.TaxPercent, &inv.DiscountPercent, &inv.ShippingCharge,
		&inv.SubTotal, &inv.DiscountAmount, &inv.TaxAmount, &inv.TotalAmount,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invoice %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if inv.IssueDate, err = time.Parse(dateLayout, issueDate); err != nil {
		return nil, fmt.Errorf("invoice %d has bad issue date %q: %w", id, issueDate, err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT description, quantity, unit_price, line_amount FROM invoice_items WHERE invoice_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	inv.Items = []models.Item{}
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.Description, &item.Quantity, &item.UnitPrice, &item.LineAmount); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		inv.Items = append(inv.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return inv, nil
}

// UpdateInvoice replaces the invoice's fields and items atomically.
func (s *SQLiteStore) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE invoices SET
			invoice_number = ?, document_type = ?, customer_details = ?, seller_details = ?,
			customer_email = ?, payment_method = ?, payment_status = ?, issue_date = ?,
			tax_percent = ?, discount_percent = ?, shipping_charge = ?,
			sub_total = ?, discount_amount = ?, tax_amount = ?, total_amount = ?,
			updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		inv.InvoiceNumber, inv.DocumentType, inv.CustomerDetails, inv.SellerDetails,
		inv.CustomerEmail, inv.PaymentMethod, inv.PaymentStatus, inv.IssueDate.Format(dateLayout),
		inv.TaxPercent, inv.DiscountPercent, inv.ShippingCharge,
		inv.SubTotal, inv.DiscountAmount, inv.TaxAmount, inv.TotalAmount,
		now,
		inv.ID, inv.OwnerID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("invoice number %d: %w", inv.InvoiceNumber, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	} else if n == 0 {
		return fmt.Errorf("invoice %d: %w", inv.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = ?", inv.ID); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	if err := insertItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	inv.UpdatedAt = now
	return nil
}

// DeleteInvoice removes the invoice; its items go with it via ON DELETE CASCADE.
func (s *SQLiteStore) DeleteInvoice(ctx context.Context, ownerID string, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("invoice %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListInvoices returns dashboard summaries for the owner, newest first.
func (s *SQLiteStore) ListInvoices(ctx context.Context, ownerID string) ([]models.InvoiceSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_number, document_type, customer_details, payment_status,
			total_amount, issue_date, updated_at
		FROM invoices
		WHERE owner_id = ?
		ORDER BY updated_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	summaries := []models.InvoiceSummary{}
	for rows.Next() {
		var sum models.InvoiceSummary
		var issueDate string
		if err := rows.Scan(
			&sum.ID, &sum.InvoiceNumber, &sum.DocumentType, &sum.CustomerDetails, &sum.PaymentStatus,
			&sum.TotalAmount, &issueDate, &sum.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		if sum.IssueDate, err = time.Parse(dateLayout, issueDate); err != nil {
			return nil, fmt.Errorf("invoice %d has bad issue date %q: %w", sum.ID, issueDate, err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return summaries, nil
}
