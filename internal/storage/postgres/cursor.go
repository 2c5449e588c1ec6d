package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// cursorID pins the table to a single row; there is only one change
// stream.
const cursorID = 1

type CursorStore struct {
	db *sqlx.DB
}

func NewCursorStore(db *sqlx.DB) *CursorStore {
	return &CursorStore{db: db}
}

// Get returns the stored page token, or an empty string when no cursor
// has been written yet.
func (s *CursorStore) Get(ctx context.Context) (string, error) {
	var token string
	query := `SELECT token FROM change_cursor WHERE id = $1`

	err := s.db.GetContext(ctx, &token, query, cursorID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *CursorStore) Set(ctx context.Context, token string) error {
	query := `
		INSERT INTO change_cursor (id, token, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			updated_at = now()`

	_, err := s.db.ExecContext(ctx, query, cursorID, token)
	return err
}
