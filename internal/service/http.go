package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/invoicer/internal/export"
	"github.com/mmynk/invoicer/internal/money"
	"github.com/mmynk/invoicer/internal/storage"
)

// Downloads serves the binary endpoints that browsers hit directly: the PDF
// for a stored invoice and the spreadsheet export of the dashboard. Both
// expect the auth middleware to have put the user in the request context.
type Downloads struct {
	invoices  *InvoiceService
	formatter *money.Formatter
	logger    *slog.Logger
}

// NewDownloads returns the download handlers backed by invoices.
func NewDownloads(invoices *InvoiceService, f *money.Formatter, logger *slog.Logger) *Downloads {
	return &Downloads{invoices: invoices, formatter: f, logger: logger}
}

// PDF handles GET /invoices/{id}/pdf. The document is sent as an attachment
// unless ?inline=1 asks for it to be shown in the browser's viewer.
func (d *Downloads) PDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid invoice id", http.StatusBadRequest)
		return
	}

	inv, err := d.invoices.stored(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	pdf, err := d.invoices.render(inv)
	if err != nil {
		writeError(w, err)
		return
	}

	disposition := "attachment"
	if inline, _ := strconv.ParseBool(r.URL.Query().Get("inline")); inline {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", PDFContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, pdfFilename(inv)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(pdf); err != nil {
		d.logger.Warn("Failed to write PDF", "invoice_id", id, "error", err)
	}
}

// Export handles GET /invoices/export.xlsx.
func (d *Downloads) Export(w http.ResponseWriter, r *http.Request) {
	owner, err := currentUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	summaries, err := d.invoices.store.ListInvoices(r.Context(), owner)
	if err != nil {
		writeError(w, storageError(err))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, summaries, d.formatter); err != nil {
		d.logger.Error("Export failed", "owner_id", owner, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		d.logger.Warn("Failed to write export", "error", err)
	}
}

// Health reports whether the store answers within a couple of seconds.
func Health(store storage.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
}

// writeError turns a Connect error from the service layer into a plain
// HTTP response.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		switch connectErr.Code() {
		case connect.CodeInvalidArgument:
			status, msg = http.StatusUnprocessableEntity, connectErr.Message()
		case connect.CodeNotFound:
			status, msg = http.StatusNotFound, "invoice not found"
		case connect.CodeUnauthenticated:
			status, msg = http.StatusUnauthorized, connectErr.Message()
		case connect.CodeCanceled, connect.CodeDeadlineExceeded:
			status, msg = http.StatusServiceUnavailable, connectErr.Message()
		}
	}
	http.Error(w, msg, status)
}
