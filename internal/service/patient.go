package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/store"
	"github.com/google/uuid"
)

type PatientService struct {
	store domain.PatientStore
}

func NewPatientService(s domain.PatientStore) *PatientService {
	return &PatientService{store: s}
}

var (
	ErrPatientNotFound   = errors.New("patient not found")
	ErrPatientConflict   = errors.New("patient with this external_id already exists")
	ErrPatientRefMissing = errors.New("patient external_id is required")
)

func (s *PatientService) Create(ctx context.Context, p *domain.Patient) error {
	p.ExternalID = strings.TrimSpace(p.ExternalID)
	if p.ExternalID == "" {
		return ErrPatientRefMissing
	}
	err := s.store.Create(ctx, p)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrPatientConflict
		}
		return err
	}
	return nil
}

func (s *PatientService) GetByID(ctx context.Context, id uuid.UUID, studyID uuid.UUID) (*domain.Patient, error) {
	p, err := s.store.GetByID(ctx, id, studyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PatientService) GetByExternalID(ctx context.Context, externalID string, studyID uuid.UUID) (*domain.Patient, error) {
	p, err := s.store.GetByExternalID(ctx, externalID, studyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return p, nil
}
