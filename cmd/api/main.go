package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravadigital/civicpulse-api/internal/config"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/server"
	"github.com/gravadigital/civicpulse-api/internal/storage/objectstore"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logLevel := "info"
	if cfg.Server.GinMode == "debug" {
		logLevel = "debug"
	}
	logger.Initialize(logLevel)
	log := logger.Get()

	db, err := postgres.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	if err := postgres.AutoMigrate(db); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	// Object storage is optional; without it uploads return 503.
	var store *objectstore.Store
	if cfg.ObjectStore.AccessKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err = objectstore.New(ctx, cfg.ObjectStore)
		cancel()
		if err != nil {
			log.Warn("Object store unavailable, uploads disabled", "error", err)
			store = nil
		}
	}

	srv := server.New(cfg, db, store)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("Server stopped unexpectedly", "error", err)
		}
	case sig := <-quit:
		log.Info("Received shutdown signal", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Error("Graceful shutdown failed", "error", err)
		}
	}

	log.Info("Server exited")
}
