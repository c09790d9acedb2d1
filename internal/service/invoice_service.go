package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/metrics"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/render"
	"github.com/mmynk/invoicer/internal/storage"
)

// PDFContentType is the MIME type of rendered documents.
const PDFContentType = "application/pdf"

// InvoiceService implements the InvoiceService RPC interface.
type InvoiceService struct {
	store    storage.Store
	renderer *render.Renderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewInvoiceService wires the service to its collaborators. m may be nil.
func NewInvoiceService(store storage.Store, renderer *render.Renderer, m *metrics.Metrics, logger *slog.Logger) *InvoiceService {
	return &InvoiceService{
		store:    store,
		renderer: renderer,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *InvoiceService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// decode turns a wire invoice into a normalized model.
func (s *InvoiceService) decode(in Invoice) (models.Invoice, error) {
	inv, err := toModel(in, s.today())
	if err != nil {
		return models.Invoice{}, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return calculator.Normalize(inv), nil
}

// prepare decodes, gates and recalculates an invoice about to be saved or
// rendered.
func (s *InvoiceService) prepare(in Invoice) (models.Invoice, error) {
	inv, err := s.decode(in)
	if err != nil {
		return models.Invoice{}, err
	}
	if err := calculator.Validate(inv); err != nil {
		return models.Invoice{}, validationError(err)
	}
	return calculator.Recalculate(inv), nil
}

func validationError(err error) error {
	if calculator.IsValidationError(err) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// storageError maps store sentinels onto Connect codes.
func storageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, fmt.Errorf("invoice number already used: %w", err))
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// CalculateTotals recomputes the derived fields of an in-progress invoice.
// It needs no session and stores nothing.
func (s *InvoiceService) CalculateTotals(_ context.Context, req *connect.Request[CalculateTotalsRequest]) (*connect.Response[CalculateTotalsResponse], error) {
	// Half-typed dates and numbers play no part in the totals.
	in := req.Msg.Invoice
	in.IssueDate = ""
	in.InvoiceNumber = 0

	inv, err := s.decode(in)
	if err != nil {
		return nil, err
	}
	totals, ok := totalsOf(inv)
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("amounts are too large to total"))
	}
	return connect.NewResponse(&CalculateTotalsResponse{Totals: totals}), nil
}

// ValidateInvoice runs the submit-time gate and reports every problem.
func (s *InvoiceService) ValidateInvoice(_ context.Context, req *connect.Request[ValidateInvoiceRequest]) (*connect.Response[ValidateInvoiceResponse], error) {
	inv, err := s.decode(req.Msg.Invoice)
	if err != nil {
		return nil, err
	}

	resp := &ValidateInvoiceResponse{Valid: true}
	if err := calculator.Validate(inv); err != nil {
		var ve *calculator.ValidationError
		if !errors.As(err, &ve) {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		resp.Valid = false
		resp.Problems = ve.Problems
	}
	return connect.NewResponse(resp), nil
}

// CreateInvoice saves a new invoice for the caller.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req *connect.Request[CreateInvoiceRequest]) (*connect.Response[CreateInvoiceResponse], error) {
	owner, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.prepare(req.Msg.Invoice)
	if err != nil {
		return nil, err
	}
	inv.ID = 0
	inv.OwnerID = owner

	if err := s.store.CreateInvoice(ctx, &inv); err != nil {
		s.logger.Error("Failed to create invoice", "owner_id", owner, "error", err)
		return nil, storageError(err)
	}

	s.logger.Info("Invoice created", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber)
	return connect.NewResponse(&CreateInvoiceResponse{Invoice: fromModel(inv)}), nil
}

// UpdateInvoice replaces one of the caller's invoices.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, req *connect.Request[UpdateInvoiceRequest]) (*connect.Response[UpdateInvoiceResponse], error) {
	owner, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Invoice.ID <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invoice id is required"))
	}
	inv, err := s.prepare(req.Msg.Invoice)
	if err != nil {
		return nil, err
	}
	inv.OwnerID = owner

	if err := s.store.UpdateInvoice(ctx, &inv); err != nil {
		if !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrConflict) {
			s.logger.Error("Failed to update invoice", "invoice_id", inv.ID, "error", err)
		}
		return nil, storageError(err)
	}

	// Re-read so the response carries the stored timestamps.
	stored, err := s.load(ctx, owner, inv.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&UpdateInvoiceResponse{Invoice: fromModel(stored)}), nil
}

// load fetches a stored invoice and recomputes its derived fields, logging
// any that were out of date.
func (s *InvoiceService) load(ctx context.Context, owner string, id int64) (models.Invoice, error) {
	stored, err := s.store.GetInvoice(ctx, owner, id)
	if err != nil {
		return models.Invoice{}, storageError(err)
	}
	for _, d := range calculator.CheckDrift(*stored) {
		s.logger.Warn("Stored total out of date", "invoice_id", id, "field", d.Field, "stored", d.Stored, "expected", d.Expected)
	}
	return calculator.Recalculate(*stored), nil
}

// GetInvoice returns one of the caller's invoices.
func (s *InvoiceService) GetInvoice(ctx context.Context, req *connect.Request[GetInvoiceRequest]) (*connect.Response[GetInvoiceResponse], error) {
	owner, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.load(ctx, owner, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetInvoiceResponse{Invoice: fromModel(inv)}), nil
}

// DeleteInvoice removes one of the caller's invoices.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, req *connect.Request[DeleteInvoiceRequest]) (*connect.Response[DeleteInvoiceResponse], error) {
	owner, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteInvoice(ctx, owner, req.Msg.ID); err != nil {
		return nil, storageError(err)
	}
	s.logger.Info("Invoice deleted", "invoice_id", req.Msg.ID)
	return connect.NewResponse(&DeleteInvoiceResponse{}), nil
}

// ListInvoices returns the caller's dashboard, most recently edited first.
func (s *InvoiceService) ListInvoices(ctx context.Context, _ *connect.Request[ListInvoicesRequest]) (*connect.Response[ListInvoicesResponse], error) {
	owner, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := s.store.ListInvoices(ctx, owner)
	if err != nil {
		return nil, storageError(err)
	}
	out := make([]InvoiceSummary, len(summaries))
	for i, sum := range summaries {
		out[i] = fromSummary(sum)
	}
	return connect.NewResponse(&ListInvoicesResponse{Invoices: out}), nil
}

// RenderInvoice produces the PDF for a stored invoice or an inline one.
func (s *InvoiceService) RenderInvoice(ctx context.Context, req *connect.Request[RenderInvoiceRequest]) (*connect.Response[RenderInvoiceResponse], error) {
	var (
		inv models.Invoice
		err error
	)
	if req.Msg.Invoice != nil {
		inv, err = s.prepare(*req.Msg.Invoice)
	} else {
		inv, err = s.stored(ctx, req.Msg.ID)
	}
	if err != nil {
		return nil, err
	}

	pdf, err := s.render(inv)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&RenderInvoiceResponse{
		Filename:    pdfFilename(inv),
		ContentType: PDFContentType,
		Document:    pdf,
	}), nil
}

// stored loads the caller's invoice and applies the submit-time gate to it.
func (s *InvoiceService) stored(ctx context.Context, id int64) (models.Invoice, error) {
	owner, err := currentUser(ctx)
	if err != nil {
		return models.Invoice{}, err
	}
	if id <= 0 {
		return models.Invoice{}, connect.NewError(connect.CodeInvalidArgument, errors.New("invoice id or inline invoice is required"))
	}
	inv, err := s.load(ctx, owner, id)
	if err != nil {
		return models.Invoice{}, err
	}
	if err := calculator.Validate(inv); err != nil {
		return models.Invoice{}, validationError(err)
	}
	return inv, nil
}

func (s *InvoiceService) render(inv models.Invoice) ([]byte, error) {
	start := time.Now()
	pdf, err := s.renderer.Render(inv)
	s.metrics.ObserveRender(time.Since(start), len(pdf), err)
	if err != nil {
		s.logger.Error("Render failed", "invoice_id", inv.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return pdf, nil
}

func pdfFilename(inv models.Invoice) string {
	if inv.ID > 0 {
		return fmt.Sprintf("invoice_%d.pdf", inv.ID)
	}
	return fmt.Sprintf("invoice_%d.pdf", inv.InvoiceNumber)
}
