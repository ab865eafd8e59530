package models

import (
	"time"

	dErrors "registrar/pkg/domain-errors"
)

// Student is a registered student record.
//
// Invariants:
//   - StudentID and Email are unique across all records; Email is stored
//     lower-cased, so uniqueness is case-insensitive.
//   - StudentID, FirstName, LastName and Email are non-empty after trimming.
//   - EnrollmentDate is the date of successful creation and never changes.
//
// ID is the backend-assigned surrogate key. It is opaque to callers and set
// by the store at creation; the decimal or hex form depends on the backend.
type Student struct {
	ID             string
	StudentID      string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	DateOfBirth    *time.Time
	Address        string
	EnrollmentDate time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName derives the display name from the stored name parts. It is
// recomputed on every read and never persisted.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// NewStudent builds a student record from a normalized, validated request.
// Enrollment date and both timestamps are stamped from now; the store
// assigns ID at persistence time.
func NewStudent(req *CreateStudentRequest, now time.Time) (*Student, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "request is required")
	}
	if req.StudentID == "" || req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "student fields must be validated before construction")
	}

	now = now.UTC()
	s := &Student{
		StudentID:      req.StudentID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		EnrollmentDate: DateOnly(now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if dob := req.ParsedDateOfBirth(); dob != nil {
		d := *dob
		s.DateOfBirth = &d
	}
	return s, nil
}

// DateOnly strips the clock from t, keeping the UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
