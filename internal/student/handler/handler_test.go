package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"registrar/internal/audit/publisher"
	auditmemory "registrar/internal/audit/store/memory"
	"registrar/internal/student/models"
	"registrar/internal/student/service"
	"registrar/internal/student/store"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/testutil"
)

// HandlerSuite wires the handler to a real service over the in-memory store.
// Handler tests validate HTTP concerns: request parsing, status mapping, and
// the response envelope.
type HandlerSuite struct {
	suite.Suite
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := service.New(store.NewInMemory(), service.WithLogger(logger))

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	s.router = r
}

var handlerTestTime = time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)

func (s *HandlerSuite) postStudent(body any) *Response {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/students", body)
	req = testutil.WithRequestTime(req, handlerTestTime)
	rr := testutil.DoRequest(s.router, req)

	var resp Response
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &resp))
	return &resp
}

func validPayload() map[string]any {
	return map[string]any{
		"student_id":    "STU001",
		"first_name":    "Ann",
		"last_name":     "Lee",
		"email":         "ann.lee@example.edu",
		"phone":         "+1 (555) 010-2000",
		"date_of_birth": "2004-03-09",
		"address":       "12 College Walk",
	}
}

// =============================================================================
// Create Student Tests
// =============================================================================

func (s *HandlerSuite) TestCreateStudent_Success() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/students", validPayload())
	req = testutil.WithRequestTime(req, handlerTestTime)
	rr := testutil.DoRequest(s.router, req)

	env := testutil.AssertSuccessEnvelope(s.T(), rr, http.StatusCreated,
		"Student Ann Lee created successfully")

	var data StudentResponse
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.NotEmpty(data.ID)
	s.Equal("STU001", data.StudentID)
	s.Equal("Ann Lee", data.FullName)
	s.Equal("ann.lee@example.edu", data.Email)
	s.Require().NotNil(data.Phone)
	s.Equal("+1 (555) 010-2000", *data.Phone)
	s.Require().NotNil(data.DateOfBirth)
	s.Equal("2004-03-09", *data.DateOfBirth)
	s.Require().NotNil(data.Address)
	s.Equal("12 College Walk", *data.Address)
	s.Equal("2026-06-15", data.EnrollmentDate)
	s.Equal(handlerTestTime, data.CreatedAt)
	s.Equal(handlerTestTime, data.UpdatedAt)
}

func (s *HandlerSuite) TestCreateStudent_OptionalFieldsNull() {
	payload := map[string]any{
		"student_id": "STU002",
		"first_name": "Ben",
		"last_name":  "Okafor",
		"email":      "ben@example.edu",
	}
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/students", payload)
	req = testutil.WithRequestTime(req, handlerTestTime)
	rr := testutil.DoRequest(s.router, req)

	env := testutil.AssertSuccessEnvelope(s.T(), rr, http.StatusCreated,
		"Student Ben Okafor created successfully")

	// Absent optionals must serialize as explicit nulls, not be omitted.
	var raw map[string]json.RawMessage
	s.Require().NoError(json.Unmarshal(env.Data, &raw))
	for _, key := range []string{"phone", "date_of_birth", "address"} {
		value, ok := raw[key]
		s.Require().True(ok, "expected key %q in response data", key)
		s.Equal("null", string(value))
	}
}

func (s *HandlerSuite) TestCreateStudent_PropagatesRequestMetadata() {
	// The handler hands its request context to the service untouched, so the
	// audit event carries whatever the middleware chain put there.
	auditStore := auditmemory.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := service.New(store.NewInMemory(),
		service.WithLogger(logger),
		service.WithAuditPublisher(publisher.NewPublisher(auditStore)),
	)
	r := chi.NewRouter()
	New(svc, logger).Register(r)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/students", validPayload())
	req = testutil.WithRequestTime(req, handlerTestTime)
	req = testutil.WithRequestID(req, "req-77")
	req = testutil.WithClientMetadata(req, "203.0.113.7", "portal/1.0")
	rr := testutil.DoRequest(r, req)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	events, err := auditStore.ListByStudentID(context.Background(), "STU001")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("req-77", events[0].RequestID)
	s.Equal("203.0.113.7", events[0].ClientIP)
	s.Equal(handlerTestTime, events[0].Timestamp)
}

func (s *HandlerSuite) TestCreateStudent_TrailingSlashHandledByRouter() {
	// Slash stripping lives in the top-level router middleware; the bare
	// handler serves only the canonical path.
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/students/", validPayload())
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
}

// =============================================================================
// Malformed Payload Tests
// =============================================================================

func (s *HandlerSuite) TestCreateStudent_InvalidJSON() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/students", "not valid json")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertFailureEnvelope(s.T(), rr, http.StatusBadRequest,
		"Failed to create student: invalid request body")
}

func (s *HandlerSuite) TestCreateStudent_EmptyBody() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/students", "")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertFailureEnvelope(s.T(), rr, http.StatusBadRequest,
		"Failed to create student: invalid request body")
}

// =============================================================================
// Validation Failure Tests
// =============================================================================

func (s *HandlerSuite) TestCreateStudent_ValidationFailure() {
	payload := validPayload()
	payload["first_name"] = "   "
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/students", payload)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertFailureEnvelope(s.T(), rr, http.StatusBadRequest,
		"Failed to create student: First name is required")
}

func (s *HandlerSuite) TestCreateStudent_InvalidEmail() {
	payload := validPayload()
	payload["email"] = "not-an-email"
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/students", payload)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertFailureEnvelope(s.T(), rr, http.StatusBadRequest,
		"Failed to create student: Invalid email format")
}

// =============================================================================
// Conflict Tests
// =============================================================================

func (s *HandlerSuite) TestCreateStudent_DuplicateStudentID() {
	s.Require().True(s.postStudent(validPayload()).Success)

	payload := validPayload()
	payload["email"] = "other@example.edu"
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/students", payload)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertFailureEnvelope(s.T(), rr, http.StatusBadRequest,
		"Failed to create student: Student with ID 'STU001' already exists")
}

func (s *HandlerSuite) TestCreateStudent_DuplicateEmail() {
	s.Require().True(s.postStudent(validPayload()).Success)

	payload := validPayload()
	payload["student_id"] = "STU999"
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/students", payload)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertFailureEnvelope(s.T(), rr, http.StatusBadRequest,
		"Failed to create student: Student with email 'ann.lee@example.edu' already exists")
}

// =============================================================================
// Storage Failure Tests
// =============================================================================

// brokenService returns the error the service emits when the store fails.
type brokenService struct{}

func (brokenService) Register(context.Context, *models.CreateStudentRequest) (*models.Student, error) {
	return nil, dErrors.Wrap(context.DeadlineExceeded, dErrors.CodeInternal, "database error creating student")
}

func (s *HandlerSuite) TestCreateStudent_StorageFailure() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	New(brokenService{}, logger).Register(r)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/students", validPayload())
	rr := testutil.DoRequest(r, req)

	testutil.AssertFailureEnvelope(s.T(), rr, http.StatusInternalServerError,
		"Failed to create student: database error creating student")
}
