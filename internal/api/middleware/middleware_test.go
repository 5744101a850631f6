package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Harshitk-cp/abstractor/internal/domain"
)

type stubStudyStore struct {
	study *domain.Study
}

func (s *stubStudyStore) Create(ctx context.Context, st *domain.Study) error { return nil }

func (s *stubStudyStore) GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Study, error) {
	if s.study != nil && s.study.APIKeyHash == hash {
		return s.study, nil
	}
	return nil, assert.AnError
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestAPIKeyAuth(t *testing.T) {
	study := &domain.Study{ID: uuid.New(), Name: "recon", APIKeyHash: HashAPIKey("sk_live")}
	var seen *domain.Study
	h := APIKeyAuth(&stubStudyStore{study: study})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = StudyFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic sk_live", http.StatusUnauthorized},
		{"no key", "Bearer ", http.StatusUnauthorized},
		{"bad key", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer sk_live", http.StatusOK},
		{"case-insensitive scheme", "bearer sk_live", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, study.ID, seen.ID)
			} else {
				assert.Nil(t, seen)
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var fromCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(fromCtx)
	assert.NoError(t, err)
	assert.Equal(t, fromCtx, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", fromCtx)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, strings.Repeat("x", 500), fromCtx)
}

func TestLogging_IncludesStudy(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	study := &domain.Study{ID: uuid.New(), APIKeyHash: HashAPIKey("k")}

	h := RequestID(Logging(zap.New(core))(APIKeyAuth(&stubStudyStore{study: study})(okHandler)))

	req := httptest.NewRequest(http.MethodGet, "/v1/patients?mrn=123", nil)
	req.Header.Set("Authorization", "Bearer k")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, study.ID.String(), fields["study_id"])
	assert.Equal(t, "/v1/patients", fields["path"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
	assert.NotContains(t, fields, "query")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := rl.Middleware(okHandler)
	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	rl.Allow("10.0.0.2")
	assert.Equal(t, 2, rl.size())

	now = now.Add(time.Hour)
	rl.Allow("10.0.0.2")
	assert.Equal(t, 1, rl.Cleanup(10*time.Minute))
	assert.Equal(t, 1, rl.size())
}

func TestMetricsCollector(t *testing.T) {
	var requests, errs atomic.Int64
	mc := NewMetricsCollector(&requests, &errs)

	for _, code := range []int{200, 404, 500} {
		h := mc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	assert.Equal(t, int64(3), requests.Load())
	assert.Equal(t, int64(2), errs.Load())
	assert.Equal(t, int64(1), mc.ServerErrors())
}
