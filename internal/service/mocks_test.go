package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/store"
	"github.com/google/uuid"
)

// mockPatientStore implements domain.PatientStore for testing.
type mockPatientStore struct {
	patients map[uuid.UUID]*domain.Patient
	listErr  error
}

func newMockPatientStore() *mockPatientStore {
	return &mockPatientStore{patients: make(map[uuid.UUID]*domain.Patient)}
}

func (m *mockPatientStore) Create(ctx context.Context, p *domain.Patient) error {
	for _, existing := range m.patients {
		if existing.ExternalID == p.ExternalID && existing.StudyID == p.StudyID {
			return store.ErrConflict
		}
	}
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientStore) GetByID(ctx context.Context, id uuid.UUID, studyID uuid.UUID) (*domain.Patient, error) {
	p, ok := m.patients[id]
	if !ok || p.StudyID != studyID {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientStore) GetByExternalID(ctx context.Context, externalID string, studyID uuid.UUID) (*domain.Patient, error) {
	for _, p := range m.patients {
		if p.ExternalID == externalID && p.StudyID == studyID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockPatientStore) ListStale(ctx context.Context, limit int) ([]domain.Patient, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Patient
	for _, p := range m.patients {
		if p.Stale() {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockPatientStore) TouchEvidence(ctx context.Context, id uuid.UUID, at time.Time) error {
	p, ok := m.patients[id]
	if !ok {
		return store.ErrNotFound
	}
	p.EvidenceAt = &at
	return nil
}

func (m *mockPatientStore) TouchResolved(ctx context.Context, id uuid.UUID, at time.Time) error {
	p, ok := m.patients[id]
	if !ok {
		return store.ErrNotFound
	}
	p.ResolvedAt = &at
	return nil
}

// mockNoteStore implements domain.NoteStore for testing.
type mockNoteStore struct {
	notes []*domain.Note
}

func (m *mockNoteStore) Upsert(ctx context.Context, n *domain.Note) error {
	for _, existing := range m.notes {
		if existing.PatientID == n.PatientID && existing.ExternalID == n.ExternalID {
			n.ID = existing.ID
			*existing = *n
			return nil
		}
	}
	n.ID = uuid.New()
	cp := *n
	m.notes = append(m.notes, &cp)
	return nil
}

func (m *mockNoteStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Note, error) {
	var out []domain.Note
	for _, n := range m.notes {
		if n.PatientID == patientID {
			out = append(out, *n)
		}
	}
	return out, nil
}

type evidenceRow struct {
	patientID uuid.UUID
	noteID    uuid.UUID
	cands     []domain.Candidate
}

// mockEvidenceStore implements domain.EvidenceStore for testing.
type mockEvidenceStore struct {
	rows []*evidenceRow
}

func (m *mockEvidenceStore) ReplaceForNote(ctx context.Context, patientID, noteID uuid.UUID, cands []domain.Candidate) error {
	for _, r := range m.rows {
		if r.noteID == noteID {
			r.cands = append([]domain.Candidate(nil), cands...)
			return nil
		}
	}
	m.rows = append(m.rows, &evidenceRow{patientID: patientID, noteID: noteID, cands: append([]domain.Candidate(nil), cands...)})
	return nil
}

func (m *mockEvidenceStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Candidate, error) {
	var out []domain.Candidate
	for _, r := range m.rows {
		if r.patientID == patientID {
			out = append(out, r.cands...)
		}
	}
	return out, nil
}

// mockResolutionStore implements domain.ResolutionStore for testing.
type mockResolutionStore struct {
	byPatient map[uuid.UUID][]domain.Resolution
	failFor   uuid.UUID
}

func newMockResolutionStore() *mockResolutionStore {
	return &mockResolutionStore{byPatient: make(map[uuid.UUID][]domain.Resolution)}
}

func (m *mockResolutionStore) ReplaceForPatient(ctx context.Context, patientID uuid.UUID, fields []domain.ResolvedField, at time.Time) error {
	if patientID == m.failFor {
		return errors.New("write failed")
	}
	rs := make([]domain.Resolution, len(fields))
	for i, f := range fields {
		rs[i] = domain.Resolution{ResolvedField: f, PatientID: patientID.String(), ResolvedAt: at}
	}
	m.byPatient[patientID] = rs
	return nil
}

func (m *mockResolutionStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Resolution, error) {
	return m.byPatient[patientID], nil
}
