// Package handler exposes student registration over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"registrar/internal/student/models"
	"registrar/pkg/requestcontext"
)

// Service defines the interface for student operations.
type Service interface {
	Register(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error)
}

// Handler handles student endpoints.
type Handler struct {
	logger   *slog.Logger
	students Service
}

// New creates a student Handler.
func New(students Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		students: students,
	}
}

// Register registers the student routes with the chi router. The router is
// expected to strip trailing slashes, so both /api/students and
// /api/students/ reach the create handler.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/students", h.handleCreateStudent)
}

// handleCreateStudent creates a student record from a JSON payload.
func (h *Handler) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create student request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	student, err := h.students.Register(ctx, &req)
	if err != nil {
		writeRegisterError(w, err)
		return
	}

	writeCreated(w, student)
}
