package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bcnelson/srvadm-console/internal/api"
	"github.com/bcnelson/srvadm-console/internal/config"
	"github.com/bcnelson/srvadm-console/internal/logging"
	"github.com/bcnelson/srvadm-console/internal/service"
	"github.com/bcnelson/srvadm-console/internal/srvadm"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatalf("Failed to initialize logging: %v", err)
	}
	log := logrus.NewEntry(logger)

	// Initialize backend client (or file shim for testing)
	var backend srvadm.Backend
	if cfg.UseFileShim() {
		log.WithField("file", cfg.API.FileShim).Info("Using file shim for the srvadm API")
		backend = srvadm.NewFileShim(cfg.API.FileShim, log)
	} else {
		client, err := srvadm.New(cfg.API.BaseURL, cfg.API.Timeout, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize srvadm client")
		}
		backend = client
	}

	// Per-browser workspaces and their janitor
	sessions := service.NewSessions(backend, cfg.Session.IdleTimeout, log)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	// Create router
	router := api.NewRouter(sessions, service.NewDirectory(backend), log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.WithFields(logrus.Fields{
		"addr":    "http://" + cfg.Server.Addr(),
		"backend": cfg.API.BaseURL,
	}).Info("Starting srvadm console")

	// Start server in goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
