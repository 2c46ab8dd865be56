package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nfrund/binstore/internal/config"
	"github.com/nfrund/binstore/internal/logging"
	"github.com/nfrund/binstore/internal/server"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.New(cfg.GetLogFormat(), cfg.GetLogLevel()) // Initialize the structured logger

	// Create a new server instance.
	s, err := server.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	// Register all application routes.
	s.RegisterRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the server.
	if err := s.Start(ctx, cfg.GetServerAddr()); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}
