package domain

import (
	"time"

	"github.com/google/uuid"
)

// Study owns an API key and scopes every patient created under it.
type Study struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	APIKeyHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
