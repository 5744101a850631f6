package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type StudyStore interface {
	Create(ctx context.Context, s *Study) error
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*Study, error)
}

type PatientStore interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID, studyID uuid.UUID) (*Patient, error)
	GetByExternalID(ctx context.Context, externalID string, studyID uuid.UUID) (*Patient, error)
	// ListStale returns patients whose evidence changed after their last resolution.
	ListStale(ctx context.Context, limit int) ([]Patient, error)
	TouchEvidence(ctx context.Context, id uuid.UUID, at time.Time) error
	TouchResolved(ctx context.Context, id uuid.UUID, at time.Time) error
}

type NoteStore interface {
	// Upsert inserts the note or replaces the stored copy with the same external id.
	Upsert(ctx context.Context, n *Note) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Note, error)
}

type EvidenceStore interface {
	// ReplaceForNote swaps every candidate previously stored for the note.
	ReplaceForNote(ctx context.Context, patientID, noteID uuid.UUID, cands []Candidate) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Candidate, error)
}

type ResolutionStore interface {
	// ReplaceForPatient swaps the stored resolution set for the patient.
	ReplaceForPatient(ctx context.Context, patientID uuid.UUID, fields []ResolvedField, at time.Time) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Resolution, error)
}
