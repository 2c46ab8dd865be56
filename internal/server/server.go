package server

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/binstore/internal/config"
	"github.com/nfrund/binstore/internal/filestore"
	"github.com/nfrund/binstore/internal/handlers"
	appmiddleware "github.com/nfrund/binstore/internal/middleware"
	"github.com/nfrund/binstore/internal/pubsub"
	"github.com/nfrund/binstore/internal/storage"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E       *echo.Echo
	Cfg     config.Provider
	Store   *storage.AferoStore
	Service filestore.Service

	// events is nil when storage events are disabled.
	events *pubsub.WatermillBridge
}

// New creates a new Server instance from cfg. Routes are registered separately
// with RegisterRoutes.
func New(cfg config.Provider) (*Server, error) {
	store, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	// A typed nil bridge must not end up inside the Publisher interface.
	var (
		events    *pubsub.WatermillBridge
		publisher pubsub.Publisher
	)
	if cfg.GetEventsEnabled() {
		events = pubsub.NewWatermillBridge()
		publisher = events
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	setupErrorHandling(e)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Recover())
	e.Use(appmiddleware.Logger)
	if limit := cfg.GetRateLimitPerMinute(); limit > 0 {
		e.Use(appmiddleware.RateLimiter(limit))
	}

	return &Server{
		E:       e,
		Cfg:     cfg,
		Store:   store,
		Service: filestore.NewService(store, publisher),
		events:  events,
	}, nil
}

// newBackend opens the storage backend selected by the configuration.
func newBackend(cfg config.Provider) (*storage.AferoStore, error) {
	switch cfg.GetStorageBackend() {
	case config.BackendMemory:
		slog.Info("Using in-memory storage backend; data will not survive a restart")
		return storage.NewMemoryStore(), nil
	case config.BackendFilesystem:
		store, err := storage.NewFilesystemStore(cfg.GetStorageRoot())
		if err != nil {
			return nil, fmt.Errorf("open storage root: %w", err)
		}
		slog.Info("Using filesystem storage backend", "root", cfg.GetStorageRoot())
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.GetStorageBackend())
	}
}
