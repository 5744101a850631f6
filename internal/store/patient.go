package store

import (
	"context"
	"errors"
	"time"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PatientStore struct {
	db *pgxpool.Pool
}

func NewPatientStore(db *pgxpool.Pool) *PatientStore {
	return &PatientStore{db: db}
}

const patientColumns = `id, study_id, external_id, metadata, evidence_at, resolved_at, created_at, updated_at`

func scanPatient(row pgx.Row, p *domain.Patient) error {
	return row.Scan(&p.ID, &p.StudyID, &p.ExternalID, &p.Metadata,
		&p.EvidenceAt, &p.ResolvedAt, &p.CreatedAt, &p.UpdatedAt)
}

func (s *PatientStore) Create(ctx context.Context, p *domain.Patient) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO patients (study_id, external_id, metadata)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		p.StudyID, p.ExternalID, p.Metadata,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *PatientStore) GetByID(ctx context.Context, id uuid.UUID, studyID uuid.UUID) (*domain.Patient, error) {
	p := &domain.Patient{}
	err := scanPatient(s.db.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = $1 AND study_id = $2`,
		id, studyID,
	), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PatientStore) GetByExternalID(ctx context.Context, externalID string, studyID uuid.UUID) (*domain.Patient, error) {
	p := &domain.Patient{}
	err := scanPatient(s.db.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE external_id = $1 AND study_id = $2`,
		externalID, studyID,
	), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PatientStore) ListStale(ctx context.Context, limit int) ([]domain.Patient, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+patientColumns+` FROM patients
		 WHERE evidence_at IS NOT NULL
		   AND (resolved_at IS NULL OR evidence_at > resolved_at)
		 ORDER BY evidence_at
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []domain.Patient
	for rows.Next() {
		var p domain.Patient
		if err := scanPatient(rows, &p); err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (s *PatientStore) TouchEvidence(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE patients SET evidence_at = $2, updated_at = NOW() WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PatientStore) TouchResolved(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE patients SET resolved_at = $2, updated_at = NOW() WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
