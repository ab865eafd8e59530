package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"registrar/internal/student"
	"registrar/internal/student/store"
	"registrar/pkg/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := student.NewService(store.NewInMemory())
	handler := student.NewHandler(svc, logger)
	return NewRouter(handler, svc, logger, Config{CORSOrigins: []string{"*"}})
}

func studentPayload() map[string]any {
	return map[string]any{
		"student_id": "STU001",
		"first_name": "Ann",
		"last_name":  "Lee",
		"email":      "ann.lee@example.edu",
	}
}

func TestRouterStudentRoutes(t *testing.T) {
	testutil.Given(t, "the assembled router", func(t *testing.T) {
		router := newTestRouter(t)

		testutil.When(t, "posting a valid student to /api/students/", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/api/students/", studentPayload())
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "the trailing slash is stripped and the student is created", func(t *testing.T) {
				testutil.AssertSuccessEnvelope(t, rr, http.StatusCreated,
					"Student Ann Lee created successfully")
			})
		})

		testutil.When(t, "posting the same student without the trailing slash", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/api/students", studentPayload())
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "the duplicate is rejected through the same route", func(t *testing.T) {
				testutil.AssertFailureEnvelope(t, rr, http.StatusBadRequest,
					"Failed to create student: Student with ID 'STU001' already exists")
			})
		})

		testutil.When(t, "using an unsupported method on the student route", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/api/students")
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "it should respond with method not allowed", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
			})
		})

		testutil.When(t, "requesting an unknown path", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/api/teachers")
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "it should respond with not found", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusNotFound)
			})
		})
	})
}

func TestRouterAssignsRequestIDs(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/students", studentPayload())
	rr := testutil.DoRequest(router, req)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a request ID on the response")
	}
}

func TestRouterAnswersPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.NewRequest(t, http.MethodOptions, "/api/students")
	req.Header.Set("Origin", "https://portal.example.edu")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusNoContent)
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard CORS header, got %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestHealthz(t *testing.T) {
	t.Run("reachable store", func(t *testing.T) {
		router := newTestRouter(t)

		req := testutil.NewRequest(t, http.MethodGet, "/healthz")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)

		var body map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode healthz body: %v", err)
		}
		if body["status"] != "ok" || body["service"] != "registrar" {
			t.Fatalf("unexpected healthz body: %v", body)
		}
	})

	t.Run("unreachable store", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		svc := student.NewService(store.NewInMemory())
		handler := student.NewHandler(svc, logger)
		router := NewRouter(handler, failingHealth{}, logger, Config{CORSOrigins: []string{"*"}})

		req := testutil.NewRequest(t, http.MethodGet, "/healthz")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)

		var body map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode healthz body: %v", err)
		}
		if body["status"] != "unavailable" {
			t.Fatalf("expected unavailable status, got %v", body)
		}
	})
}

type failingHealth struct{}

func (failingHealth) Health(context.Context) error { return context.DeadlineExceeded }

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.NewRequest(t, http.MethodGet, "/metrics")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	if !bytes.Contains(rr.Body.Bytes(), []byte("go_goroutines")) {
		t.Fatalf("expected Prometheus output on /metrics")
	}
}
