package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"recording_ingest/internal/domain"
)

type RecordingStore struct {
	db *sqlx.DB
}

func NewRecordingStore(db *sqlx.DB) *RecordingStore {
	return &RecordingStore{db: db}
}

// Upsert writes a recording keyed by its Drive file id, overwriting any
// existing row in place. created_at is assigned by the database on first
// insert and preserved across rewrites.
func (s *RecordingStore) Upsert(ctx context.Context, rec *domain.Recording) error {
	query := `
		INSERT INTO recordings (
			file_id, file_name, phone_number, recorded_at,
			transcript, summary, audio_url, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, now()
		)
		ON CONFLICT (file_id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			phone_number = EXCLUDED.phone_number,
			recorded_at = EXCLUDED.recorded_at,
			transcript = EXCLUDED.transcript,
			summary = EXCLUDED.summary,
			audio_url = EXCLUDED.audio_url,
			status = EXCLUDED.status
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		rec.FileID,
		rec.FileName,
		rec.PhoneNumber,
		rec.RecordedAt,
		rec.Transcript,
		rec.Summary,
		rec.AudioURL,
		rec.Status,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert recording: %w", err)
	}

	return nil
}

func (s *RecordingStore) GetByFileID(ctx context.Context, fileID string) (*domain.Recording, error) {
	var rec domain.Recording
	query := `
		SELECT id, file_id, file_name, phone_number, recorded_at,
		       transcript, summary, audio_url, status, created_at
		FROM recordings
		WHERE file_id = $1`

	err := s.db.GetContext(ctx, &rec, query, fileID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
