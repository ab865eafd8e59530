package student

import (
	"log/slog"

	"registrar/internal/student/handler"
	"registrar/internal/student/service"
)

// Service exposes student registration orchestration.
type Service = service.Service

// Handler wires HTTP endpoints to the student service.
type Handler = handler.Handler

// NewService constructs the student service over the given store.
func NewService(students service.StudentStore, opts ...service.Option) *Service {
	return service.New(students, opts...)
}

// NewHandler constructs an HTTP handler for the student routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
