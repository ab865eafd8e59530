// Package audit records registration activity as an append-only trail.
package audit

import (
	"context"
	"time"
)

// Action identifies what happened.
type Action string

const (
	// ActionStudentRegistered is appended once per successful registration.
	ActionStudentRegistered Action = "student.registered"
)

// Event captures one registration action. Keep it transport-agnostic so
// stores can fan out.
type Event struct {
	Timestamp time.Time
	Action    Action
	// StudentID is the external identifier of the student involved.
	StudentID string
	Email     string
	// RecordID is the backend-assigned ID of the stored record.
	RecordID  string
	RequestID string
	ClientIP  string
}

// Store persists audit events in append order.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByStudentID(ctx context.Context, studentID string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
