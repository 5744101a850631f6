package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EvidenceStore struct {
	db *pgxpool.Pool
}

func NewEvidenceStore(db *pgxpool.Pool) *EvidenceStore {
	return &EvidenceStore{db: db}
}

func (s *EvidenceStore) ReplaceForNote(ctx context.Context, patientID, noteID uuid.UUID, cands []domain.Candidate) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM evidence WHERE note_id = $1`, noteID); err != nil {
			return fmt.Errorf("clear evidence: %w", err)
		}

		batch := &pgx.Batch{}
		for i, c := range cands {
			value, err := json.Marshal(c.Value)
			if err != nil {
				return fmt.Errorf("marshal value for %s: %w", c.Field, err)
			}
			batch.Queue(
				`INSERT INTO evidence (patient_id, note_id, position, field, value, status, evidence,
				   section, note_type, note_ext_id, note_date, confidence)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				patientID, noteID, i, c.Field, value, string(c.Status), c.Evidence,
				c.Section, string(c.NoteType), c.NoteID, c.NoteDate, c.Confidence,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *EvidenceStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Candidate, error) {
	rows, err := s.db.Query(ctx,
		`SELECT e.field, e.value, e.status, e.evidence, e.section, e.note_type,
		        e.note_ext_id, e.note_date, e.confidence
		 FROM evidence e JOIN notes n ON n.id = e.note_id
		 WHERE e.patient_id = $1
		 ORDER BY n.created_at, n.external_id, e.position`,
		patientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cands []domain.Candidate
	for rows.Next() {
		var (
			c               domain.Candidate
			value           []byte
			status, noteTyp string
		)
		if err := rows.Scan(&c.Field, &value, &status, &c.Evidence, &c.Section, &noteTyp,
			&c.NoteID, &c.NoteDate, &c.Confidence); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(value, &c.Value); err != nil {
			return nil, fmt.Errorf("decode value for %s: %w", c.Field, err)
		}
		c.Status = domain.Status(status)
		c.NoteType = domain.NoteType(noteTyp)
		cands = append(cands, c)
	}
	return cands, rows.Err()
}
