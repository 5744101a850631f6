package store

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StudyStore struct {
	db *pgxpool.Pool
}

func NewStudyStore(db *pgxpool.Pool) *StudyStore {
	return &StudyStore{db: db}
}

func (s *StudyStore) Create(ctx context.Context, st *domain.Study) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO studies (name, api_key_hash) VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		st.Name, st.APIKeyHash,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *StudyStore) GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.Study, error) {
	st := &domain.Study{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, api_key_hash, created_at, updated_at
		 FROM studies WHERE api_key_hash = $1`,
		apiKeyHash,
	).Scan(&st.ID, &st.Name, &st.APIKeyHash, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return st, nil
}
