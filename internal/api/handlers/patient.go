package handlers

import (
	"errors"
	"net/http"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/service"
)

type PatientHandler struct {
	svc *service.PatientService
}

func NewPatientHandler(svc *service.PatientService) *PatientHandler {
	return &PatientHandler{svc: svc}
}

type createPatientRequest struct {
	ExternalID string         `json:"external_id"`
	Metadata   map[string]any `json:"metadata"`
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	study, ok := requireStudy(w, r)
	if !ok {
		return
	}

	var req createPatientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patient := &domain.Patient{
		StudyID:    study.ID,
		ExternalID: req.ExternalID,
		Metadata:   req.Metadata,
	}

	if err := h.svc.Create(r.Context(), patient); err != nil {
		switch {
		case errors.Is(err, service.ErrPatientRefMissing):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPatientConflict):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create patient")
		}
		return
	}

	writeJSON(w, http.StatusCreated, patient)
}

func (h *PatientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	study, ok := requireStudy(w, r)
	if !ok {
		return
	}
	id, ok := patientIDParam(w, r)
	if !ok {
		return
	}

	patient, err := h.svc.GetByID(r.Context(), id, study.ID)
	if err != nil {
		if errors.Is(err, service.ErrPatientNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get patient")
		return
	}

	writeJSON(w, http.StatusOK, patient)
}
