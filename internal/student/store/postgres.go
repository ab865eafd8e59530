package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"registrar/internal/platform/postgres"
	"registrar/internal/student/models"
	"registrar/pkg/platform/sentinel"
)

const studentColumns = "id, student_id, first_name, last_name, email, phone, date_of_birth, address, enrollment_date, created_at, updated_at"

const insertStudentSQL = `
INSERT INTO students (student_id, first_name, last_name, email, phone, date_of_birth, address, enrollment_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`

// Constraint names from the students migration. Unique violations are mapped
// to conflict errors by the constraint that fired.
const (
	studentIDConstraint = "students_student_id_key"
	emailConstraint     = "students_email_key"
)

// Postgres stores student records in a students table. Uniqueness is
// enforced by the table's constraints; there is no pre-check on this path.
type Postgres struct {
	db postgres.DBInterface
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db postgres.DBInterface) *Postgres {
	return &Postgres{db: db}
}

// Create inserts the record in its own transaction and returns it with the
// assigned id. A failed insert leaves no partial state behind.
func (p *Postgres) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create student: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, insertStudentSQL,
		student.StudentID,
		student.FirstName,
		student.LastName,
		student.Email,
		nullable(student.Phone),
		student.DateOfBirth,
		nullable(student.Address),
		student.EnrollmentDate,
		student.CreatedAt,
		student.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return nil, mapUniqueViolation(err, "insert student")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create student: %w", err)
	}

	out := clone(student)
	out.ID = strconv.FormatInt(id, 10)
	return out, nil
}

func (p *Postgres) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	row := p.db.QueryRow(ctx, "SELECT "+studentColumns+" FROM students WHERE student_id = $1", studentID)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find student by student_id: %w", err)
	}
	return s, nil
}

func (p *Postgres) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := p.db.QueryRow(ctx, "SELECT "+studentColumns+" FROM students WHERE email = $1", email)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return s, nil
}

func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int64
	if err := p.db.QueryRow(ctx, "SELECT COUNT(*) FROM students").Scan(&n); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return int(n), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	var one int
	if err := p.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

// scannable abstracts pgx.Row and pgx.Rows for the scan helper.
type scannable interface {
	Scan(dest ...any) error
}

func scanStudent(row scannable) (*models.Student, error) {
	var (
		s       models.Student
		id      int64
		phone   *string
		dob     *time.Time
		address *string
	)
	err := row.Scan(&id, &s.StudentID, &s.FirstName, &s.LastName, &s.Email,
		&phone, &dob, &address, &s.EnrollmentDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.ID = strconv.FormatInt(id, 10)
	if phone != nil {
		s.Phone = *phone
	}
	if address != nil {
		s.Address = *address
	}
	s.DateOfBirth = dob
	return &s, nil
}

// mapUniqueViolation translates a unique violation into the conflict error
// for the constraint that fired. Anything else is wrapped as-is.
func mapUniqueViolation(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case studentIDConstraint:
			return ErrStudentIDExists
		case emailConstraint:
			return ErrEmailExists
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullable maps an absent optional string to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
