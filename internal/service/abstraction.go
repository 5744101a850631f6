package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/pipeline"
	"github.com/Harshitk-cp/abstractor/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoteIDMissing = errors.New("note_id is required")
	ErrNoteTextEmpty = errors.New("note text is empty")
	ErrNoEvidence    = errors.New("patient has no ingested notes")
)

// NoteIngestResult is what a single ingested note produced.
type NoteIngestResult struct {
	Note     *domain.Note       `json:"note"`
	Evidence []domain.Candidate `json:"evidence"`
}

// AbstractionService runs notes through the pipeline and persists the
// evidence and resolved fields per patient.
type AbstractionService struct {
	patients    domain.PatientStore
	notes       domain.NoteStore
	evidence    domain.EvidenceStore
	resolutions domain.ResolutionStore
	pipeline    *pipeline.Pipeline
	logger      *zap.Logger
	now         func() time.Time
}

func NewAbstractionService(
	ps domain.PatientStore,
	ns domain.NoteStore,
	es domain.EvidenceStore,
	rs domain.ResolutionStore,
	p *pipeline.Pipeline,
	logger *zap.Logger,
) *AbstractionService {
	return &AbstractionService{
		patients:    ps,
		notes:       ns,
		evidence:    es,
		resolutions: rs,
		pipeline:    p,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *AbstractionService) Pipeline() *pipeline.Pipeline { return s.pipeline }

func (s *AbstractionService) patient(ctx context.Context, id, studyID uuid.UUID) (*domain.Patient, error) {
	p, err := s.patients.GetByID(ctx, id, studyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return p, nil
}

// IngestNote sectionizes and extracts one note, then replaces whatever
// evidence an earlier copy of the same note produced.
func (s *AbstractionService) IngestNote(ctx context.Context, patientID, studyID uuid.UUID, raw domain.RawNote) (*NoteIngestResult, error) {
	raw.ID = strings.TrimSpace(raw.ID)
	if raw.ID == "" {
		return nil, ErrNoteIDMissing
	}
	if strings.TrimSpace(raw.Text) == "" {
		return nil, ErrNoteTextEmpty
	}

	p, err := s.patient(ctx, patientID, studyID)
	if err != nil {
		return nil, err
	}
	raw.PatientRef = p.ExternalID

	res := s.pipeline.ProcessNote(raw)

	note := &domain.Note{
		PatientID:  p.ID,
		ExternalID: raw.ID,
		TypeHint:   raw.TypeHint,
		NoteType:   res.Note.Type,
		NoteDate:   raw.Date,
		Text:       raw.Text,
		Sections:   res.Note.Sections.Names(),
	}
	if err := s.notes.Upsert(ctx, note); err != nil {
		return nil, fmt.Errorf("store note: %w", err)
	}
	if err := s.evidence.ReplaceForNote(ctx, p.ID, note.ID, res.Evidence); err != nil {
		return nil, fmt.Errorf("store evidence: %w", err)
	}
	if err := s.patients.TouchEvidence(ctx, p.ID, s.now()); err != nil {
		return nil, fmt.Errorf("touch patient: %w", err)
	}

	s.logger.Info("note ingested",
		zap.String("patient_id", p.ID.String()),
		zap.String("note_id", note.ExternalID),
		zap.String("note_type", string(note.NoteType)),
		zap.Int("sections", len(note.Sections)),
		zap.Int("candidates", len(res.Evidence)))

	return &NoteIngestResult{Note: note, Evidence: res.Evidence}, nil
}

func (s *AbstractionService) Evidence(ctx context.Context, patientID, studyID uuid.UUID) ([]domain.Candidate, error) {
	p, err := s.patient(ctx, patientID, studyID)
	if err != nil {
		return nil, err
	}
	return s.evidence.ListByPatient(ctx, p.ID)
}

// Resolve aggregates the patient's stored evidence and replaces the stored
// resolution set.
func (s *AbstractionService) Resolve(ctx context.Context, patientID, studyID uuid.UUID) ([]domain.ResolvedField, error) {
	p, err := s.patient(ctx, patientID, studyID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, p)
}

func (s *AbstractionService) resolve(ctx context.Context, p *domain.Patient) ([]domain.ResolvedField, error) {
	if p.EvidenceAt == nil {
		return nil, ErrNoEvidence
	}

	// Stamped before reading so evidence written during the run leaves the
	// patient stale.
	at := s.now()

	cands, err := s.evidence.ListByPatient(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}

	engine := s.pipeline.Engine()
	fields := engine.Ordered(engine.AggregatePatient(cands))

	if err := s.resolutions.ReplaceForPatient(ctx, p.ID, fields, at); err != nil {
		return nil, fmt.Errorf("store resolution: %w", err)
	}
	if err := s.patients.TouchResolved(ctx, p.ID, at); err != nil {
		return nil, fmt.Errorf("touch patient: %w", err)
	}

	s.logger.Info("patient resolved",
		zap.String("patient_id", p.ID.String()),
		zap.Int("candidates", len(cands)),
		zap.Int("fields", len(fields)))

	return fields, nil
}

func (s *AbstractionService) Resolved(ctx context.Context, patientID, studyID uuid.UUID) ([]domain.Resolution, error) {
	p, err := s.patient(ctx, patientID, studyID)
	if err != nil {
		return nil, err
	}
	return s.resolutions.ListByPatient(ctx, p.ID)
}

// TrackedFields is the column order of a flattened patient row.
func (s *AbstractionService) TrackedFields() []string {
	return s.pipeline.Engine().Config().TrackedFields
}
