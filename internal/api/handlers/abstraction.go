package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/report"
	"github.com/Harshitk-cp/abstractor/internal/service"
)

type AbstractionHandler struct {
	svc    *service.AbstractionService
	logger *zap.Logger
}

func NewAbstractionHandler(svc *service.AbstractionService, logger *zap.Logger) *AbstractionHandler {
	return &AbstractionHandler{svc: svc, logger: logger}
}

type ingestNoteRequest struct {
	NoteID   string `json:"note_id"`
	NoteType string `json:"note_type"`
	NoteDate string `json:"note_date"`
	Text     string `json:"text"`
}

// serviceError maps service sentinels to HTTP statuses.
func (h *AbstractionHandler) serviceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, service.ErrNoteIDMissing), errors.Is(err, service.ErrNoteTextEmpty):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoEvidence):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("failed to "+action, zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

func (h *AbstractionHandler) IngestNote(w http.ResponseWriter, r *http.Request) {
	study, ok := requireStudy(w, r)
	if !ok {
		return
	}
	id, ok := patientIDParam(w, r)
	if !ok {
		return
	}

	var req ingestNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.IngestNote(r.Context(), id, study.ID, domain.RawNote{
		ID:       req.NoteID,
		TypeHint: req.NoteType,
		Date:     req.NoteDate,
		Text:     req.Text,
	})
	if err != nil {
		h.serviceError(w, err, "ingest note")
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

type evidenceResponse struct {
	PatientID string             `json:"patient_id"`
	Count     int                `json:"count"`
	Evidence  []domain.Candidate `json:"evidence"`
}

func (h *AbstractionHandler) Evidence(w http.ResponseWriter, r *http.Request) {
	study, ok := requireStudy(w, r)
	if !ok {
		return
	}
	id, ok := patientIDParam(w, r)
	if !ok {
		return
	}

	cands, err := h.svc.Evidence(r.Context(), id, study.ID)
	if err != nil {
		h.serviceError(w, err, "list evidence")
		return
	}
	if cands == nil {
		cands = []domain.Candidate{}
	}

	writeJSON(w, http.StatusOK, evidenceResponse{PatientID: id.String(), Count: len(cands), Evidence: cands})
}

type resolveResponse struct {
	PatientID string                 `json:"patient_id"`
	Fields    []domain.ResolvedField `json:"fields"`
}

func (h *AbstractionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	study, ok := requireStudy(w, r)
	if !ok {
		return
	}
	id, ok := patientIDParam(w, r)
	if !ok {
		return
	}

	fields, err := h.svc.Resolve(r.Context(), id, study.ID)
	if err != nil {
		h.serviceError(w, err, "resolve patient")
		return
	}
	if fields == nil {
		fields = []domain.ResolvedField{}
	}

	writeJSON(w, http.StatusOK, resolveResponse{PatientID: id.String(), Fields: fields})
}

type resolvedResponse struct {
	PatientID string              `json:"patient_id"`
	Fields    []domain.Resolution `json:"fields"`
	Row       report.Row          `json:"row"`
}

func (h *AbstractionHandler) Resolved(w http.ResponseWriter, r *http.Request) {
	study, ok := requireStudy(w, r)
	if !ok {
		return
	}
	id, ok := patientIDParam(w, r)
	if !ok {
		return
	}

	rs, err := h.svc.Resolved(r.Context(), id, study.ID)
	if err != nil {
		h.serviceError(w, err, "get resolved fields")
		return
	}
	if rs == nil {
		rs = []domain.Resolution{}
	}

	writeJSON(w, http.StatusOK, resolvedResponse{
		PatientID: id.String(),
		Fields:    rs,
		Row:       report.Flatten(id.String(), report.FromResolutions(rs), h.svc.TrackedFields()),
	})
}

type sectionizeRequest struct {
	NoteID   string `json:"note_id"`
	NoteType string `json:"note_type"`
	Text     string `json:"text"`
	Extract  bool   `json:"extract"`
}

type sectionizeResponse struct {
	Note     domain.SectionedNote `json:"note"`
	Evidence []domain.Candidate   `json:"evidence,omitempty"`
}

// Sectionize previews sectioning (and optionally extraction) of a note
// without storing anything.
func (h *AbstractionHandler) Sectionize(w http.ResponseWriter, r *http.Request) {
	var req sectionizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	raw := domain.RawNote{ID: req.NoteID, TypeHint: req.NoteType, Text: req.Text}

	p := h.svc.Pipeline()
	if req.Extract {
		res := p.ProcessNote(raw)
		writeJSON(w, http.StatusOK, sectionizeResponse{Note: res.Note, Evidence: res.Evidence})
		return
	}
	writeJSON(w, http.StatusOK, sectionizeResponse{Note: p.Sectionize(raw)})
}
