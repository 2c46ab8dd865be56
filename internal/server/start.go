package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nfrund/binstore/internal/filestore"
	"github.com/nfrund/binstore/internal/logging"
)

// Start runs the HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully. Background workers (the staging-file sweeper and the
// audit subscriber) live for as long as ctx does.
func (s *Server) Start(ctx context.Context, addr string) error {
	bgCtx := logging.WithLogger(ctx, slog.Default())

	s.Store.RunSweeper(bgCtx, s.Cfg.GetSweepInterval(), s.Cfg.GetSweepTTL())

	if s.events != nil {
		if err := filestore.SubscribeAudit(bgCtx, s.events); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "address", addr)
		if err := s.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("Server failed", "error", err)
			_ = s.shutdown()
			return err
		}
		return nil
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
		return s.shutdown()
	}
}
