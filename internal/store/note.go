package store

import (
	"context"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NoteStore struct {
	db *pgxpool.Pool
}

func NewNoteStore(db *pgxpool.Pool) *NoteStore {
	return &NoteStore{db: db}
}

// Upsert keys on (patient_id, external_id); re-ingesting a note replaces its
// text, type and section list but keeps its id.
func (s *NoteStore) Upsert(ctx context.Context, n *domain.Note) error {
	if n.Sections == nil {
		n.Sections = []string{}
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO notes (patient_id, external_id, type_hint, note_type, note_date, text, sections)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (patient_id, external_id) DO UPDATE SET
		   type_hint = EXCLUDED.type_hint,
		   note_type = EXCLUDED.note_type,
		   note_date = EXCLUDED.note_date,
		   text = EXCLUDED.text,
		   sections = EXCLUDED.sections,
		   updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		n.PatientID, n.ExternalID, n.TypeHint, string(n.NoteType), n.NoteDate, n.Text, n.Sections,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

func (s *NoteStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Note, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, patient_id, external_id, type_hint, note_type, note_date, text, sections, created_at, updated_at
		 FROM notes WHERE patient_id = $1
		 ORDER BY created_at, external_id`,
		patientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		var noteType string
		if err := rows.Scan(&n.ID, &n.PatientID, &n.ExternalID, &n.TypeHint, &noteType,
			&n.NoteDate, &n.Text, &n.Sections, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		n.NoteType = domain.NoteType(noteType)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
