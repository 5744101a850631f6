package domain

import (
	"time"

	"github.com/google/uuid"
)

// Patient is identified inside a study by a pseudonymous external id.
type Patient struct {
	ID         uuid.UUID      `json:"id"`
	StudyID    uuid.UUID      `json:"study_id,omitempty"`
	ExternalID string         `json:"external_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	EvidenceAt *time.Time     `json:"evidence_at,omitempty"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Stale reports whether evidence changed after the last resolution.
func (p *Patient) Stale() bool {
	if p.EvidenceAt == nil {
		return false
	}
	return p.ResolvedAt == nil || p.EvidenceAt.After(*p.ResolvedAt)
}
