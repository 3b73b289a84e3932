// Package main initializes and starts the ERFMS record API server,
// setting up configuration, logging, the document store, repositories,
// services, handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/erfms/internal/config"
	"github.com/atinyakov/erfms/internal/db"
	"github.com/atinyakov/erfms/internal/logger"
	"github.com/atinyakov/erfms/internal/repository"
	"github.com/atinyakov/erfms/internal/schema"
	"github.com/atinyakov/erfms/internal/server/handler/http"
	"github.com/atinyakov/erfms/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the document store. The server still starts without it and
	// answers record requests with 503.
	store := openStore(ctx, options, zapLogger)
	defer func() { _ = store.Close() }()

	db.StartAvailabilityProbe(ctx, store, options.ProbeInterval, zapLogger)

	recordRepo := repository.NewRecordRepository(store)

	// Initialize business-logic services.
	recordService := service.NewRecordService(recordRepo, schema.Default)
	schemaService := service.NewSchemaService(schema.Default, cmp.Or(version, "dev"))

	// Create HTTP handlers.
	recordHandler := http.NewRecordHandler(recordService, zapLogger)
	schemaHandler := &http.SchemaHandler{SchemaService: schemaService}
	healthHandler := &http.HealthHandler{
		Version:         cmp.Or(version, "dev"),
		Driver:          options.Driver,
		Store:           recordRepo,
		DatabaseURLSet:  options.DatabaseDSN != "",
		DatabaseNameSet: options.DatabaseName != "",
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(recordHandler, schemaHandler, healthHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if options.TLSEnabled() {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Address))
			err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
		} else {
			zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
			err = server.ListenAndServe()
		}
		if !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// openStore connects to the configured store, falling back to the
// unavailable handle when it cannot be reached.
func openStore(ctx context.Context, options *config.Options, log *zap.Logger) *db.Handle {
	if options.DatabaseDSN == "" {
		log.Warn("DATABASE_URL not set, document store unavailable", zap.String("driver", options.Driver))
		return db.Unavailable(options.Driver)
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := db.Open(openCtx, options.Driver, options.DatabaseDSN)
	if err != nil {
		log.Error("cannot open document store", zap.String("driver", options.Driver), zap.Error(err))
		return db.Unavailable(options.Driver)
	}
	log.Info("document store connected",
		zap.String("driver", options.Driver),
		zap.String("database", options.DatabaseName),
	)
	return store
}
