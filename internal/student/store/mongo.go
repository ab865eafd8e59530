package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"registrar/internal/student/models"
	"registrar/pkg/platform/sentinel"
)

const studentsCollection = "students"

// Mongo stores student records in a students collection. Uniqueness is
// backed by unique indexes (see EnsureIndexes); the pre-checks in Create
// only exist to pick the friendlier conflict error, the index is the
// source of truth under concurrency.
type Mongo struct {
	coll *mongo.Collection
}

var _ Store = (*Mongo)(nil)

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{coll: db.Collection(studentsCollection)}
}

// studentDocument is the BSON shape of a student record. Optional fields are
// omitted entirely when absent so reads render them as null.
type studentDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	StudentID      string             `bson:"student_id"`
	FirstName      string             `bson:"first_name"`
	LastName       string             `bson:"last_name"`
	Email          string             `bson:"email"`
	Phone          *string            `bson:"phone,omitempty"`
	DateOfBirth    *time.Time         `bson:"date_of_birth,omitempty"`
	Address        *string            `bson:"address,omitempty"`
	EnrollmentDate time.Time          `bson:"enrollment_date"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

// EnsureIndexes creates the unique and query indexes the store relies on.
// Call once at startup, before the store serves requests.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "first_name", Value: 1}, {Key: "last_name", Value: 1}}},
		{Keys: bson.D{{Key: "enrollment_date", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create student indexes: %w", err)
	}
	return nil
}

// Create pre-checks both unique keys in parallel, then inserts. A concurrent
// creation that slips past the pre-checks is still caught by the unique
// index and mapped to the same conflict error.
func (m *Mongo) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := m.FindByStudentID(gctx, student.StudentID)
		if err == nil {
			return ErrStudentIDExists
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		_, err := m.FindByEmail(gctx, student.Email)
		if err == nil {
			return ErrEmailExists
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res, err := m.coll.InsertOne(ctx, toDocument(student))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, mapDuplicateKey(err)
		}
		return nil, fmt.Errorf("insert student: %w", err)
	}

	out := clone(student)
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		out.ID = oid.Hex()
	}
	return out, nil
}

func (m *Mongo) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	var doc studentDocument
	err := m.coll.FindOne(ctx, bson.M{"student_id": studentID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find student by student_id: %w", err)
	}
	return doc.toModel(), nil
}

func (m *Mongo) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var doc studentDocument
	err := m.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return doc.toModel(), nil
}

func (m *Mongo) Count(ctx context.Context) (int, error) {
	n, err := m.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return int(n), nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func toDocument(s *models.Student) studentDocument {
	doc := studentDocument{
		StudentID:      s.StudentID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Email:          s.Email,
		Phone:          nullable(s.Phone),
		DateOfBirth:    s.DateOfBirth,
		Address:        nullable(s.Address),
		EnrollmentDate: s.EnrollmentDate,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	return doc
}

func (d *studentDocument) toModel() *models.Student {
	s := &models.Student{
		ID:             d.ID.Hex(),
		StudentID:      d.StudentID,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Email:          d.Email,
		EnrollmentDate: d.EnrollmentDate,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.Phone != nil {
		s.Phone = *d.Phone
	}
	if d.Address != nil {
		s.Address = *d.Address
	}
	if d.DateOfBirth != nil {
		dob := *d.DateOfBirth
		s.DateOfBirth = &dob
	}
	return s
}

// mapDuplicateKey picks the conflict error for the unique index named in a
// duplicate key error. The driver does not expose the key structurally, so
// this matches on the index name embedded in the message.
func mapDuplicateKey(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "student_id") {
		return ErrStudentIDExists
	}
	if strings.Contains(msg, "email") {
		return ErrEmailExists
	}
	return fmt.Errorf("insert student: %w: %v", sentinel.ErrConflict, err)
}
