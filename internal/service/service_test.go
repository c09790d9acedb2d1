package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/metrics"
	"github.com/mmynk/invoicer/internal/middleware"
	"github.com/mmynk/invoicer/internal/money"
	"github.com/mmynk/invoicer/internal/render"
	"github.com/mmynk/invoicer/internal/storage/sqlite"
	"github.com/mmynk/invoicer/pkg/logging"
)

const testSecret = "test-secret-key-0123456789"

type testEnv struct {
	url      string
	store    *sqlite.SQLiteStore
	auth     *AuthClient
	invoices *InvoiceClient
	service  *InvoiceService
}

// setupTestServer runs the full handler stack against a temporary database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := logging.Discard()
	formatter, err := money.NewFormatter("en-IN", "INR")
	if err != nil {
		t.Fatalf("failed to create formatter: %v", err)
	}
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)

	authSvc := NewAuthService(auth.NewPasswordAuthenticator(store), store, jwtManager, logger)
	invoiceSvc := NewInvoiceService(store, render.New(formatter), metrics.New(prometheus.NewRegistry()), logger)
	downloads := NewDownloads(invoiceSvc, formatter, logger)

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, PublicProcedures...),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	mux.Handle(NewAuthServiceHandler(authSvc, interceptors))
	mux.Handle(NewInvoiceServiceHandler(invoiceSvc, interceptors))
	mux.Handle("GET /invoices/export.xlsx", middleware.RequireAuthHTTP(jwtManager, http.HandlerFunc(downloads.Export)))
	mux.Handle("GET /invoices/{id}/pdf", middleware.RequireAuthHTTP(jwtManager, http.HandlerFunc(downloads.PDF)))
	mux.Handle("GET /healthz", Health(store))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		url:      server.URL,
		store:    store,
		auth:     NewAuthClient(http.DefaultClient, server.URL),
		invoices: NewInvoiceClient(http.DefaultClient, server.URL),
		service:  invoiceSvc,
	}
}

// signUp registers a user and returns its session token.
func (e *testEnv) signUp(t *testing.T, email string) string {
	t.Helper()

	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&RegisterRequest{
		Email:       email,
		DisplayName: "Test User",
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return resp.Msg.Token
}

func authed[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func sampleInvoice(number int64) Invoice {
	return Invoice{
		InvoiceNumber:   LenientNumber(number),
		DocumentType:    "Invoice",
		PaymentMethod:   "Cash",
		PaymentStatus:   "PENDING",
		CustomerDetails: "Jane Doe\n12 Road",
		SellerDetails:   "Doe Supplies",
		CustomerEmail:   "jane@example.com",
		IssueDate:       "2026-10-01",
		Items: []Item{
			{Description: "Zebra print", Quantity: 2, UnitPrice: 100},
			{Description: "Apple crate", Quantity: 1, UnitPrice: 50},
		},
		DiscountPercent: 10,
		TaxPercent:      5,
		ShippingCharge:  20,
	}
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil error", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("expected %v, got %v (%v)", code, got, err)
	}
}
