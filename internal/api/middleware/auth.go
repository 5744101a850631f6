package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/abstractor/internal/domain"
)

type contextKey string

const studyContextKey contextKey = "study"

func StudyFromContext(ctx context.Context) *domain.Study {
	s, _ := ctx.Value(studyContextKey).(*domain.Study)
	return s
}

// WithStudy returns a context carrying the authenticated study.
func WithStudy(ctx context.Context, s *domain.Study) context.Context {
	return context.WithValue(ctx, studyContextKey, s)
}

// APIKeyAuth resolves "Authorization: Bearer <key>" to a study by the sha256
// of the key.
func APIKeyAuth(studyStore domain.StudyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			scheme, apiKey, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(apiKey) == "" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			study, err := studyStore.GetByAPIKeyHash(r.Context(), HashAPIKey(strings.TrimSpace(apiKey)))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			if info := requestInfoFromContext(r.Context()); info != nil {
				info.studyID = study.ID.String()
			}
			next.ServeHTTP(w, r.WithContext(WithStudy(r.Context(), study)))
		})
	}
}

// HashAPIKey is the stored form of an API key.
func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
