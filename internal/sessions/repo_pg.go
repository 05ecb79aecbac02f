package sessions

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, session Session) error {
	const query = `
INSERT INTO sessions (id, user_id, email, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Email,
		session.CreatedAt,
		session.ExpiresAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, sessionID string) (Session, error) {
	const query = `
SELECT id, user_id, email, created_at, expires_at, ended_at
FROM sessions
WHERE id = $1
LIMIT 1`
	var session Session
	var endedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.Email,
		&session.CreatedAt,
		&session.ExpiresAt,
		&endedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		session.EndedAt = &t
	}
	return session, nil
}

// End stamps ended_at once; ending an ended session is a no-op.
func (r *PGRepo) End(ctx context.Context, sessionID string, at time.Time) error {
	const query = `
UPDATE sessions
SET ended_at = COALESCE(ended_at, $2)
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, sessionID, at)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
