package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docedit/internal/api"
	"github.com/dgallion1/docedit/internal/app"
	"github.com/dgallion1/docedit/internal/config"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, log, true)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}

	srv := api.NewServer(api.Deps{
		Runner:   a.Runner,
		Gateway:  a.Gateway,
		Sessions: a.Sessions,
		Blobs:    a.Resolver,
		Policy:   a.Policy,
		Pending:  a.Pending,
		Stats:    a.Stats,
		Model:    a.Model,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		a.Close()
	}()

	log.Info("starting docedit", "port", cfg.Port, "document_root", cfg.DocumentRoot, "provider", cfg.LLMProvider)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
