package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResolutionStore struct {
	db *pgxpool.Pool
}

func NewResolutionStore(db *pgxpool.Pool) *ResolutionStore {
	return &ResolutionStore{db: db}
}

func (s *ResolutionStore) ReplaceForPatient(ctx context.Context, patientID uuid.UUID, fields []domain.ResolvedField, at time.Time) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM resolved_fields WHERE patient_id = $1`, patientID); err != nil {
			return fmt.Errorf("clear resolved fields: %w", err)
		}

		batch := &pgx.Batch{}
		for _, f := range fields {
			value, err := json.Marshal(f.Value)
			if err != nil {
				return fmt.Errorf("marshal value for %s: %w", f.Field, err)
			}
			batch.Queue(
				`INSERT INTO resolved_fields (patient_id, field, value, status, evidence, section,
				   note_type, note_ext_id, note_date, rule, resolved_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				patientID, f.Field, value, string(f.Status), f.Evidence, f.Section,
				string(f.NoteType), f.NoteID, f.NoteDate, f.Rule, at,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *ResolutionStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Resolution, error) {
	rows, err := s.db.Query(ctx,
		`SELECT field, value, status, evidence, section, note_type, note_ext_id, note_date, rule, resolved_at
		 FROM resolved_fields WHERE patient_id = $1
		 ORDER BY field`,
		patientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Resolution
	for rows.Next() {
		var (
			r               domain.Resolution
			value           []byte
			status, noteTyp string
		)
		if err := rows.Scan(&r.Field, &value, &status, &r.Evidence, &r.Section, &noteTyp,
			&r.NoteID, &r.NoteDate, &r.Rule, &r.ResolvedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(value, &r.Value); err != nil {
			return nil, fmt.Errorf("decode value for %s: %w", r.Field, err)
		}
		r.Status = domain.Status(status)
		r.NoteType = domain.NoteType(noteTyp)
		r.PatientID = patientID.String()
		out = append(out, r)
	}
	return out, rows.Err()
}
