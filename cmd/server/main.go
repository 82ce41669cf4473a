package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resumerefresh/config"
	"resumerefresh/internal/bootstrap"
)

// @title Resume Refresh Mailer API
// @version 1.0
// @description Sends AMP-capable resume refresh emails and accepts the applicants' submissions.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{WithStore: true, Migrate: true})
	if err != nil {
		logger.Error("failed to start", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("shutdown cleanup failed", "err", err)
		}
	}()

	// Verification failures are logged; the server still starts so the
	// test-connection endpoint can report the problem.
	go func() {
		vctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := app.Refresh.TestConnection(vctx); err != nil {
			logger.Warn("mail channel verification failed", "provider", cfg.Mail.Provider, "err", err)
			return
		}
		logger.Info("mail channel ready", "provider", cfg.Mail.Provider)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"server_url", cfg.ServerURL,
			"store", cfg.StoreBackend,
			"mail_provider", cfg.Mail.Provider,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
