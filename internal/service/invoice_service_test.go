package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/invoicer/internal/storage"
)

func TestCalculateTotals(t *testing.T) {
	env := setupTestServer(t)

	// No token: the live preview works before login.
	resp, err := env.invoices.CalculateTotals(context.Background(), connect.NewRequest(&CalculateTotalsRequest{
		Invoice: sampleInvoice(1),
	}))
	if err != nil {
		t.Fatalf("CalculateTotals failed: %v", err)
	}

	got := resp.Msg.Totals
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"subTotal", got.SubTotal, 250},
		{"discountAmount", got.DiscountAmount, 25},
		{"taxableAmount", got.TaxableAmount, 225},
		{"taxAmount", got.TaxAmount, 11.25},
		{"totalAmount", got.TotalAmount, 256.25},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 0.001 {
			t.Errorf("%s = %.4f, want %.4f", tt.name, tt.got, tt.want)
		}
	}
	if len(got.LineAmounts) != 2 || got.LineAmounts[0] != 200 || got.LineAmounts[1] != 50 {
		t.Errorf("lineAmounts = %v, want [200 50]", got.LineAmounts)
	}
}

func TestCalculateTotalsLenientInput(t *testing.T) {
	env := setupTestServer(t)

	// Half-typed form values arrive as strings.
	body := `{"invoice":{"items":[
		{"description":"Widget","quantity":"3","unitPrice":"2.5"},
		{"description":"Typo","quantity":"abc","unitPrice":10},
		{"description":"","quantity":"","unitPrice":""}
	],"taxPercent":"","discountPercent":null,"shippingCharge":"4"}}`

	req, err := http.NewRequest(http.MethodPost, env.url+InvoiceCalculateTotalsProcedure, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out CalculateTotalsResponse
	if err := (jsonCodec{}).Unmarshal(readAll(t, resp), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if math.Abs(out.Totals.SubTotal-7.5) > 0.001 {
		t.Errorf("subTotal = %.4f, want 7.5", out.Totals.SubTotal)
	}
	if math.Abs(out.Totals.TotalAmount-11.5) > 0.001 {
		t.Errorf("totalAmount = %.4f, want 11.5", out.Totals.TotalAmount)
	}
}

func TestValidateInvoice(t *testing.T) {
	env := setupTestServer(t)
	token := env.signUp(t, "v@example.com")

	resp, err := env.invoices.ValidateInvoice(context.Background(), authed(&ValidateInvoiceRequest{Invoice: sampleInvoice(1)}, token))
	if err != nil {
		t.Fatalf("ValidateInvoice failed: %v", err)
	}
	if !resp.Msg.Valid || len(resp.Msg.Problems) != 0 {
		t.Errorf("complete invoice: valid=%v problems=%v", resp.Msg.Valid, resp.Msg.Problems)
	}

	resp, err = env.invoices.ValidateInvoice(context.Background(), authed(&ValidateInvoiceRequest{}, token))
	if err != nil {
		t.Fatalf("ValidateInvoice failed: %v", err)
	}
	if resp.Msg.Valid {
		t.Error("empty invoice reported valid")
	}
	if len(resp.Msg.Problems) == 0 {
		t.Error("expected problems for empty invoice")
	}
}

func TestInvoiceRequiresAuth(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.invoices.CreateInvoice(context.Background(), connect.NewRequest(&CreateInvoiceRequest{Invoice: sampleInvoice(1)}))
	wantCode(t, err, connect.CodeUnauthenticated)

	_, err = env.invoices.ListInvoices(context.Background(), authed(&ListInvoicesRequest{}, "not-a-token"))
	wantCode(t, err, connect.CodeUnauthenticated)
}

func TestCreateAndGetInvoice(t *testing.T) {
	env := setupTestServer(t)
	token := env.signUp(t, "owner@example.com")
	ctx := context.Background()

	in := sampleInvoice(1001)
	// Stale derived values from the client are never trusted.
	in.TotalAmount = 9999
	in.Items[0].LineAmount = 1

	created, err := env.invoices.CreateInvoice(ctx, authed(&CreateInvoiceRequest{Invoice: in}, token))
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}
	inv := created.Msg.Invoice
	if inv.ID <= 0 {
		t.Fatalf("expected an assigned id, got %d", inv.ID)
	}
	if float64(inv.TotalAmount) != 256.25 {
		t.Errorf("totalAmount = %v, want 256.25", inv.TotalAmount)
	}
	if float64(inv.Items[0].LineAmount) != 200 {
		t.Errorf("items[0].lineAmount = %v, want 200", inv.Items[0].LineAmount)
	}
	if inv.CreatedAt == "" || inv.UpdatedAt == "" {
		t.Error("expected timestamps on created invoice")
	}

	got, err := env.invoices.GetInvoice(ctx, authed(&GetInvoiceRequest{ID: inv.ID}, token))
	if err != nil {
		t.Fatalf("GetInvoice failed: %v", err)
	}
	g := got.Msg.Invoice
	if g.CustomerDetails != "Jane Doe\n12 Road" || g.IssueDate != "2026-10-01" {
		t.Errorf("unexpected invoice: %+v", g)
	}
	if len(g.Items) != 2 || g.Items[0].Description != "Zebra print" || g.Items[1].Description != "Apple crate" {
		t.Errorf("items out of order: %+v", g.Items)
	}
	if float64(g.TaxAmount) != 11.25 {
		t.Errorf("taxAmount = %v, want 11.25", g.TaxAmount)
	}
}

func TestCreateInvoiceRejectsIncomplete(t *testing.T) {
	env := setupTestServer(t)
	token := env.signUp(t, "owner@example.com")
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Invoice)
	}{
		{"no items", func(in *Invoice) { in.Items = nil }},
		{"no complete item", func(in *Invoice) { in.Items = []Item{{Description: "Free", Quantity: 1}} }},
		{"zero invoice number", func(in *Invoice) { in.InvoiceNumber = 0 }},
		{"missing seller", func(in *Invoice) { in.SellerDetails = "  " }},
		{"unknown document type", func(in *Invoice) { in.DocumentType = "Quote" }},
		{"unknown payment method", func(in *Invoice) { in.PaymentMethod = "Cheque" }},
		{"bad email", func(in *Invoice) { in.CustomerEmail = "nope" }},
		{"bad date", func(in *Invoice) { in.IssueDate = "01/10/2026" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInvoice(1)
			tt.mutate(&in)
			_, err := env.invoices.CreateInvoice(ctx, authed(&CreateInvoiceRequest{Invoice: in}, token))
			wantCode(t, err, connect.CodeInvalidArgument)
		})
	}

	list, err := env.invoices.ListInvoices(ctx, authed(&ListInvoicesRequest{}, token))
	if err != nil {
		t.Fatalf("ListInvoices failed: %v", err)
	}
	if len(list.Msg.Invoices) != 0 {
		t.Errorf("rejected invoices were persisted: %d rows", len(list.Msg.Invoices))
	}
}

func TestCreateInvoiceDuplicateNumber(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice@example.com")
	bob := env.signUp(t, "bob@example.com")

	if _, err := env.invoices.CreateInvoice(ctx, authed(&CreateInvoiceRequest{Invoice: sampleInvoice(7)}, alice)); err != nil {
		t.Fatalf("first CreateInvoice failed: %v", err)
	}
	_, err := env.invoices.CreateInvoice(ctx, authed(&CreateInvoiceRequest{Invoice: sampleInvoice(7)}, alice))
	wantCode(t, err, connect.CodeAlreadyExists)

	// Numbers are per owner.
	if _, err := env.invoices.CreateInvoice(ctx, authed(&CreateInvoiceRequest{Invoice: sampleInvoice(7)}, bob)); err != nil {
		t.Fatalf("other owner CreateInvoice failed: %v", err)
	}
}

func TestUpdateInvoice(t *testing.T) {
	env := setupTestServer(t)
	token := env.signUp(t, "owner@example.com")
	ctx := context.Background()

	created, err := env.invoices.CreateInvoice(ctx, authed(&CreateInvoiceRequest{Invoice: sampleInvoice(1)}, token))
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}

	in := sampleInvoice(1)
	in.ID = created.Msg.Invoice.ID
	in.PaymentStatus = "paid"
	in.Items = []Item{{Description: "Consulting", Quantity: 3, UnitPrice: 100}}
	in.DiscountPercent = 0
	in.TaxPercent = 0
	in.ShippingCharge = 0

	updated, err := env.invoices.UpdateInvoice(ctx, authed(&UpdateInvoiceRequest{Invoice: in}, token))
	if err != nil {
		t.Fatalf("UpdateInvoice failed: %v", err)
	}
	u := updated.Msg.Invoice
	if u.PaymentStatus != "PAID" {
		t.Errorf("paymentStatus = %q, want PAID", u.PaymentStatus)
	}
	if len(u.Items) != 1 || float64(u.TotalAmount) != 300 {
		t.Errorf("unexpected update result: items=%d total=%v", len(u.Items), u.TotalAmount)
	}
	if u.CreatedAt != created.Msg.Invoice.CreatedAt {
		t.Errorf("createdAt changed: %s -> %s", created.Msg.Invoice.CreatedAt, u.CreatedAt)
	}

	in.ID = 424242
	_, err = env.invoices.UpdateInvoice(ctx, authed(&UpdateInvoiceRequest{Invoice: in}, token))
	wantCode(t, err, connect.CodeNotFound)

	in.ID = 0
	_, err = env.invoices.UpdateInvoice(ctx, authed(&UpdateInvoiceRequest{Invoice: in}, token))
	wantCode(t, err, connect.CodeInvalidArgument)
}

func TestInvoicesAreScopedToOwner(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice@example.com")
	bob := env.signUp(t, "bob@example.com")

	created, err := env.invoices.CreateInvoice(ctx, authed(&CreateInvoiceRequest{Invoice: sampleInvoice(1)}, alice))
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}
	id := created.Msg.Invoice.ID

	_, err = env.invoices.GetInvoice(ctx, authed(&GetInvoiceRequest{ID: id}, bob))
	wantCode(t, err, connect.CodeNotFound)

	_, err = env.invoices.DeleteInvoice(ctx, authed(&DeleteInvoiceRequest{ID: id}, bob))
	wantCode(t, err, connect.CodeNotFound)

	list, err := env.invoices.ListInvoices(ctx, authed(&ListInvoicesRequest{}, bob))
	if err != nil {
		t.Fatalf("ListInvoices failed: %v", err)
	}
	if len(list.Msg.Invoices) != 0 {
		t.Errorf("bob sees %d invoices, want 0", len(list.Msg.Invoices))
	}
}

func TestDeleteInvoice(t *testing.T) {
	env := setupTestServer(t)
	token := env.signUp(t, "owner@example.com")
	ctx := context.Background()

	created, err := env.invoices.CreateInvoice(ctx, authed(&CreateInvoiceRequest{Invoice: sampleInvoice(1)}, token))
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}
	id := created.Msg.Invoice.ID

	if _, err := env.invoices.DeleteInvoice(ctx, authed(&DeleteInvoiceRequest{ID: id}, token)); err != nil {
		t.Fatalf("DeleteInvoice failed: %v", err)
	}
	_, err = env.invoices.GetInvoice(ctx, authed(&GetInvoiceRequest{ID: id}, token))
	wantCode(t, err, connect.CodeNotFound)

	_, err = env.invoices.DeleteInvoice(ctx, authed(&DeleteInvoiceRequest{ID: id}, token))
	wantCode(t, err, connect.CodeNotFound)
}

func TestListInvoices(t *testing.T) {
	env := setupTestServer(t)
	token := env.signUp(t, "owner@example.com")
	ctx := context.Background()

	var ids []int64
	for _, n := range []int64{1, 2, 3} {
		created, err := env.invoices.CreateInvoice(ctx, authed(&CreateInvoiceRequest{Invoice: sampleInvoice(n)}, token))
		if err != nil {
			t.Fatalf("CreateInvoice(%d) failed: %v", n, err)
		}
		ids = append(ids, created.Msg.Invoice.ID)
	}

	list, err := env.invoices.ListInvoices(ctx, authed(&ListInvoicesRequest{}, token))
	if err != nil {
		t.Fatalf("ListInvoices failed: %v", err)
	}
	rows := list.Msg.Invoices
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// Same updatedAt second; ties break on id, newest first.
	for i, want := range []int64{ids[2], ids[1], ids[0]} {
		if rows[i].ID != want {
			t.Errorf("row %d id = %d, want %d", i, rows[i].ID, want)
		}
	}
	if math.Abs(rows[0].TotalAmount-256.25) > 0.001 {
		t.Errorf("row total = %.2f, want 256.25", rows[0].TotalAmount)
	}
}

func TestRenderInvoice(t *testing.T) {
	env := setupTestServer(t)
	token := env.signUp(t, "owner@example.com")
	ctx := context.Background()

	created, err := env.invoices.CreateInvoice(ctx, authed(&CreateInvoiceRequest{Invoice: sampleInvoice(12)}, token))
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}
	id := created.Msg.Invoice.ID

	byID, err := env.invoices.RenderInvoice(ctx, authed(&RenderInvoiceRequest{ID: id}, token))
	if err != nil {
		t.Fatalf("RenderInvoice by id failed: %v", err)
	}
	if !strings.HasPrefix(string(byID.Msg.Document), "%PDF-") {
		t.Error("document is not a PDF")
	}
	if byID.Msg.ContentType != PDFContentType {
		t.Errorf("contentType = %q", byID.Msg.ContentType)
	}
	if want := "invoice_" + itoa(id) + ".pdf"; byID.Msg.Filename != want {
		t.Errorf("filename = %q, want %q", byID.Msg.Filename, want)
	}

	inline := sampleInvoice(99)
	preview, err := env.invoices.RenderInvoice(ctx, authed(&RenderInvoiceRequest{Invoice: &inline}, token))
	if err != nil {
		t.Fatalf("RenderInvoice inline failed: %v", err)
	}
	if len(preview.Msg.Document) == 0 || preview.Msg.Filename != "invoice_99.pdf" {
		t.Errorf("inline render: %d bytes, filename %q", len(preview.Msg.Document), preview.Msg.Filename)
	}

	broken := sampleInvoice(5)
	broken.Items = nil
	_, err = env.invoices.RenderInvoice(ctx, authed(&RenderInvoiceRequest{Invoice: &broken}, token))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = env.invoices.RenderInvoice(ctx, authed(&RenderInvoiceRequest{}, token))
	wantCode(t, err, connect.CodeInvalidArgument)
}

func TestCalculateTotalsIgnoresHalfTypedHeader(t *testing.T) {
	env := setupTestServer(t)

	in := sampleInvoice(1)
	in.IssueDate = "2026-1"
	in.InvoiceNumber = 1.9

	resp, err := env.invoices.CalculateTotals(context.Background(), connect.NewRequest(&CalculateTotalsRequest{Invoice: in}))
	if err != nil {
		t.Fatalf("CalculateTotals failed: %v", err)
	}
	if math.Abs(resp.Msg.Totals.TotalAmount-256.25) > 0.001 {
		t.Errorf("totalAmount = %.4f, want 256.25", resp.Msg.Totals.TotalAmount)
	}
}

func TestAmountOverflowIsRejected(t *testing.T) {
	env := setupTestServer(t)
	token := env.signUp(t, "owner@example.com")
	ctx := context.Background()

	in := sampleInvoice(1)
	in.Items = []Item{{Description: "Huge", Quantity: 1e200, UnitPrice: 1e200}}

	_, err := env.invoices.CalculateTotals(ctx, connect.NewRequest(&CalculateTotalsRequest{Invoice: in}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = env.invoices.CreateInvoice(ctx, authed(&CreateInvoiceRequest{Invoice: in}, token))
	wantCode(t, err, connect.CodeInvalidArgument)

	// Nothing was stored, so the export still works.
	resp := get(t, env.url+"/invoices/export.xlsx", token)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("export status = %d, want 200", resp.StatusCode)
	}
}

func TestCreateInvoiceRejectsFractionalNumber(t *testing.T) {
	env := setupTestServer(t)
	token := env.signUp(t, "owner@example.com")

	in := sampleInvoice(1)
	in.InvoiceNumber = 1.9
	_, err := env.invoices.CreateInvoice(context.Background(), authed(&CreateInvoiceRequest{Invoice: in}, token))
	wantCode(t, err, connect.CodeInvalidArgument)
}

func TestStorageErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{fmt.Errorf("get: %w", storage.ErrNotFound), connect.CodeNotFound},
		{fmt.Errorf("create: %w", storage.ErrConflict), connect.CodeAlreadyExists},
		{fmt.Errorf("query: %w", context.Canceled), connect.CodeCanceled},
		{fmt.Errorf("query: %w", context.DeadlineExceeded), connect.CodeDeadlineExceeded},
		{errors.New("disk on fire"), connect.CodeInternal},
	}
	for _, tt := range tests {
		if got := connect.CodeOf(storageError(tt.err)); got != tt.want {
			t.Errorf("storageError(%v) code = %v, want %v", tt.err, got, tt.want)
		}
	}
}
