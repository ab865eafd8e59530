package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"registrar/internal/audit"
	platformdb "registrar/internal/platform/postgres"
	txcontext "registrar/pkg/platform/tx"
)

// Store persists audit events in the audit_events table.
type Store struct {
	db platformdb.DBInterface
}

var _ audit.Store = (*Store)(nil)

func New(db platformdb.DBInterface) *Store {
	return &Store{db: db}
}

// dbExecutor lets Append join a caller-owned transaction from the context.
type dbExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const appendEventSQL = `
INSERT INTO audit_events (id, timestamp, action, student_id, email, record_id, request_id, client_ip)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`

// Append writes one event. When the context carries a transaction the write
// joins it and commits or rolls back with the owner.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	_, err := s.execer(ctx).Exec(ctx, appendEventSQL,
		uuid.NewString(),
		event.Timestamp,
		string(event.Action),
		event.StudentID,
		event.Email,
		event.RecordID,
		event.RequestID,
		event.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

const eventColumns = "timestamp, action, student_id, email, record_id, request_id, client_ip"

func (s *Store) ListByStudentID(ctx context.Context, studentID string) ([]audit.Event, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+eventColumns+" FROM audit_events WHERE student_id = $1 ORDER BY timestamp DESC",
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListRecent returns the N most recent events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+eventColumns+" FROM audit_events ORDER BY timestamp DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			event  audit.Event
			action string
		)
		err := rows.Scan(&event.Timestamp, &action, &event.StudentID,
			&event.Email, &event.RecordID, &event.RequestID, &event.ClientIP)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = audit.Action(action)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
