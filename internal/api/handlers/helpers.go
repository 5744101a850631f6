package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Harshitk-cp/abstractor/internal/api/middleware"
	"github.com/Harshitk-cp/abstractor/internal/domain"
)

// maxBodyBytes bounds request bodies; clinical notes are rarely over a few
// hundred kilobytes.
const maxBodyBytes = 4 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func requireStudy(w http.ResponseWriter, r *http.Request) (*domain.Study, bool) {
	study := middleware.StudyFromContext(r.Context())
	if study == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return study, true
}

func patientIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid patient id")
		return uuid.Nil, false
	}
	return id, true
}
