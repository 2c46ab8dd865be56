package server

import (
	"github.com/nfrund/binstore/internal/handlers"
)

// APIPrefix is the base path of the storage API.
const APIPrefix = "/api/v1/storage"

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	storageHandler := handlers.NewStorageHandler(s.Service)
	storageHandler.Register(s.E.Group(APIPrefix))

	s.E.GET("/health", handlers.Health)
}
