package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/abstractor/internal/api/middleware"
	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/store"
)

type StudyHandler struct {
	store domain.StudyStore
}

func NewStudyHandler(store domain.StudyStore) *StudyHandler {
	return &StudyHandler{store: store}
}

type createStudyRequest struct {
	Name string `json:"name"`
}

type createStudyResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	APIKey string `json:"api_key"`
}

// Create registers a study and returns its API key. The key is only ever
// shown here; the store keeps its hash.
func (h *StudyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStudyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate API key")
		return
	}

	study := &domain.Study{
		Name:       req.Name,
		APIKeyHash: middleware.HashAPIKey(apiKey),
	}

	if err := h.store.Create(r.Context(), study); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "study already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create study")
		return
	}

	writeJSON(w, http.StatusCreated, createStudyResponse{
		ID:     study.ID.String(),
		Name:   study.Name,
		APIKey: apiKey,
	})
}

func generateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "ab_" + hex.EncodeToString(b), nil
}
