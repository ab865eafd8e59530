// Package store persists student records across interchangeable backends.
//
// All implementations expose the same externally observable semantics: the
// two unique keys (student ID, email) are enforced by the backend's native
// constraint, and violations surface as the conflict errors below. Services
// translate these into domain errors; no implementation returns a domain
// error directly.
package store

import (
	"context"
	"fmt"

	"registrar/internal/student/models"
	"registrar/pkg/platform/sentinel"
)

// Conflict errors identify which unique key a creation collided on. Both
// match sentinel.ErrConflict in errors.Is, so callers that only care about
// "some unique key was taken" can test for the generic sentinel.
var (
	ErrStudentIDExists = fmt.Errorf("student_id: %w", sentinel.ErrConflict)
	ErrEmailExists     = fmt.Errorf("email: %w", sentinel.ErrConflict)
)

// Store persists student records. The backend is selected once at process
// start; callers depend only on this interface.
//
// Create expects a normalized, validated record without an ID and returns
// the stored record with the backend-assigned ID. Lookups return
// sentinel.ErrNotFound for missing records.
type Store interface {
	Create(ctx context.Context, student *models.Student) (*models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}
