// Package service implements the student registration business logic.
//
// The service owns the request pipeline: normalization, validation, record
// construction, persistence, and the translation of store conflicts into
// caller-safe domain errors. Storage is pluggable behind StudentStore; the
// audit publisher and metrics are optional and nil-safe.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"registrar/internal/audit"
	"registrar/internal/student/metrics"
	"registrar/internal/student/models"
	"registrar/internal/student/store"
	"registrar/pkg/attrs"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/requestcontext"
)

// StudentStore is the slice of the store contract the service depends on.
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) (*models.Student, error)
	Ping(ctx context.Context) error
}

// AuditPublisher records registration activity for the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service handles student registration operations.
type Service struct {
	students       StudentStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

// Option configures optional dependencies on the Service.
type Option func(s *Service)

// WithLogger sets the logger for audit and diagnostic logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditPublisher sets the publisher that persists audit events.
func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithMetrics sets the metrics recorder for registration outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a student service backed by the given store.
func New(students StudentStore, opts ...Option) *Service {
	s := &Service{students: students}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register normalizes and validates the request, then persists a new student
// record. The request is normalized in place. Validation failures and
// uniqueness conflicts return coded domain errors whose messages are safe to
// show the caller; everything else is wrapped as an internal error.
func (s *Service) Register(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error) {
	start := time.Now()
	now := requestcontext.Now(ctx)

	req.Normalize()
	if err := req.Validate(now); err != nil {
		s.logWarn(ctx, "registration rejected by validation", "error", err)
		s.incrementValidationFailure()
		return nil, err
	}

	student, err := models.NewStudent(req, now)
	if err != nil {
		return nil, err
	}

	created, err := s.students.Create(ctx, student)
	if err != nil {
		return nil, s.createError(ctx, student, err)
	}

	s.logAudit(ctx, string(audit.ActionStudentRegistered),
		"student_id", created.StudentID,
		"email", created.Email,
		"record_id", created.ID,
	)
	s.incrementStudentsCreated()
	s.observeRegister(start)

	return created, nil
}

// Health reports whether the backing store is reachable.
func (s *Service) Health(ctx context.Context) error {
	return s.students.Ping(ctx)
}

// createError translates store failures into domain errors. Conflict messages
// name the colliding key so the caller can correct the request; any other
// failure is logged and collapsed into a generic internal error.
func (s *Service) createError(ctx context.Context, student *models.Student, err error) error {
	switch {
	case errors.Is(err, store.ErrStudentIDExists):
		s.logWarn(ctx, "registration rejected by duplicate student ID", "student_id", student.StudentID)
		s.incrementConflict("student_id")
		return dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("Student with ID '%s' already exists", student.StudentID))
	case errors.Is(err, store.ErrEmailExists):
		s.logWarn(ctx, "registration rejected by duplicate email", "email", student.Email)
		s.incrementConflict("email")
		return dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("Student with email '%s' already exists", student.Email))
	default:
		s.logError(ctx, "student create failed", "error", err, "student_id", student.StudentID)
		return dErrors.Wrap(err, dErrors.CodeInternal, "database error creating student")
	}
}

// logAudit writes the structured audit log line and forwards the event to the
// audit publisher. Publishing is best effort: a full buffer or closed store
// never fails the registration that triggered it.
func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}

	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}

	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.Action(event),
		StudentID: attrs.ExtractString(attributes, "student_id"),
		Email:     attrs.ExtractString(attributes, "email"),
		RecordID:  attrs.ExtractString(attributes, "record_id"),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
	})
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, args...)
	}
}

func (s *Service) logError(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, msg, args...)
	}
}

func (s *Service) incrementStudentsCreated() {
	if s.metrics != nil {
		s.metrics.IncrementStudentsCreated()
	}
}

func (s *Service) incrementValidationFailure() {
	if s.metrics != nil {
		s.metrics.IncrementValidationFailure()
	}
}

func (s *Service) incrementConflict(key string) {
	if s.metrics != nil {
		s.metrics.IncrementConflict(key)
	}
}

func (s *Service) observeRegister(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveRegister(start)
	}
}
