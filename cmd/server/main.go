package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/config"
	"github.com/mmynk/invoicer/internal/metrics"
	"github.com/mmynk/invoicer/internal/middleware"
	"github.com/mmynk/invoicer/internal/money"
	"github.com/mmynk/invoicer/internal/render"
	"github.com/mmynk/invoicer/internal/service"
	"github.com/mmynk/invoicer/internal/storage/sqlite"
	"github.com/mmynk/invoicer/pkg/logging"
)

func main() {
	envPath := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	if err := run(*envPath); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(envPath string) error {
	cfg, err := config.New(envPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup(cfg.Logger.Level, cfg.Logger.Format)

	store, err := sqlite.New(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.SQLite.Path)

	formatter, err := money.NewFormatter(cfg.Document.Locale, cfg.Document.Currency)
	if err != nil {
		return fmt.Errorf("invoice formatting: %w", err)
	}
	renderer := render.New(formatter, render.WithNote(cfg.Document.Note))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	authSvc := service.NewAuthService(authenticator, store, jwtManager, logger)
	invoiceSvc := service.NewInvoiceService(store, renderer, m, logger)
	downloads := service.NewDownloads(invoiceSvc, formatter, logger)

	interceptors := connect.WithInterceptors(
		m.Interceptor(),
		middleware.RequireAuth(jwtManager, service.PublicProcedures...),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	mux.Handle(service.NewAuthServiceHandler(authSvc, interceptors))
	mux.Handle(service.NewInvoiceServiceHandler(invoiceSvc, interceptors))
	mux.Handle("GET /invoices/{id}/pdf", middleware.RequireAuthHTTP(jwtManager, http.HandlerFunc(downloads.PDF)))
	mux.Handle("GET /invoices/export.xlsx", middleware.RequireAuthHTTP(jwtManager, http.HandlerFunc(downloads.Export)))
	mux.Handle("GET /metrics", metrics.Handler(registry))
	mux.Handle("GET /healthz", service.Health(store))

	// h2c gives Connect HTTP/2 without TLS.
	handler := h2c.NewHandler(middleware.Logging(logger, middleware.CORS(mux)), &http2.Server{})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", server.Addr, "locale", cfg.Document.Locale, "currency", cfg.Document.Currency)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.HTTP.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
