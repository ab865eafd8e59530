package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/pkg/requestcontext"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRequestID(t *testing.T) {
	t.Run("generates an ID when the caller sends none", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("honors a caller-supplied ID", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", seen)
		assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	})
}

func TestRequestTime(t *testing.T) {
	before := time.Now()
	var seen time.Time
	h := RequestTime(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Now(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.False(t, seen.IsZero())
	assert.True(t, !seen.Before(before) && !seen.After(time.Now()))
}

func TestClientMetadata(t *testing.T) {
	capture := func(req *http.Request) (ip, ua string) {
		h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip = requestcontext.ClientIP(r.Context())
			ua = requestcontext.UserAgent(r.Context())
		}))
		h.ServeHTTP(httptest.NewRecorder(), req)
		return ip, ua
	}

	t.Run("prefers the first X-Forwarded-For entry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		req.Header.Set("User-Agent", "portal/1.0")

		ip, ua := capture(req)
		assert.Equal(t, "203.0.113.7", ip)
		assert.Equal(t, "portal/1.0", ua)
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "198.51.100.4")

		ip, _ := capture(req)
		assert.Equal(t, "198.51.100.4", ip)
	})

	t.Run("strips the port from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.9:51234"

		ip, _ := capture(req)
		assert.Equal(t, "192.0.2.9", ip)
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/students", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/api/students"`)
}

func TestRecovery(t *testing.T) {
	t.Run("converts a panic into a 500", func(t *testing.T) {
		h := Recovery(silentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "internal_error")
	})

	t.Run("passes normal responses through", func(t *testing.T) {
		h := Recovery(silentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestTimeout(t *testing.T) {
	var hasDeadline bool
	h := Timeout(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("wildcard allows every origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://portal.example.edu")
		rec := httptest.NewRecorder()
		CORS([]string{"*"})(ok).ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origin is echoed with Vary", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://portal.example.edu")
		rec := httptest.NewRecorder()
		CORS([]string{"https://portal.example.edu"})(ok).ServeHTTP(rec, req)

		assert.Equal(t, "https://portal.example.edu", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("unlisted origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		CORS([]string{"https://portal.example.edu"})(ok).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("preflight is answered directly", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://portal.example.edu")
		rec := httptest.NewRecorder()
		CORS([]string{"*"})(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}
