package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockprep/mockprep-go/internal/crypto"
)

const testSecret = "test-secret"

func protected() http.Handler {
	r := chi.NewRouter()
	r.Use(JWTAuth(testSecret))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		email, _ := AdminFromContext(r.Context())
		w.Write([]byte(email))
	})
	return r
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func TestJWTAuth(t *testing.T) {
	adminToken, _, err := crypto.GenerateToken("admin@example.com", crypto.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)
	userToken, _, err := crypto.GenerateToken("user@example.com", "candidate", testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{name: "missing header", status: http.StatusUnauthorized, message: "missing authorization header"},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized, message: "invalid authorization format"},
		{name: "garbage token", header: "Bearer abc", status: http.StatusUnauthorized, message: "invalid or expired token"},
		{name: "non-admin role", header: "Bearer " + userToken, status: http.StatusForbidden, message: "admin role required"},
		{name: "admin", header: "Bearer " + adminToken, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected().ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, errorBody(t, rec))
			} else {
				assert.Equal(t, "admin@example.com", rec.Body.String())
			}
		})
	}
}

func TestJWTAuthRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, crypto.Claims{Role: crypto.RoleAdmin})
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+s)
	rec := httptest.NewRecorder()
	protected().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := RateLimit(ctx, 1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1001").Code)

	rec := do("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "too many requests", errorBody(t, rec))

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2:1000").Code)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID, Logger(logger))
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-Id", "req-123")
	r.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.Contains(t, line, "level=ERROR")
	assert.Contains(t, line, "path=/boom")
	assert.Contains(t, line, "status=500")
	assert.Contains(t, line, "request_id=req-123")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/api/admin/categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/admin/categories/42", nil))
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "mockprep_http_requests_total" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		metric := mf.GetMetric()[0]
		labels := map[string]string{}
		for _, lp := range metric.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, "/api/admin/categories/{id}", labels["route"])
		assert.Equal(t, "404", labels["status"])
		assert.Equal(t, 3.0, metric.GetCounter().GetValue())
		found = true
	}
	assert.True(t, found, "request counter not gathered")
}
