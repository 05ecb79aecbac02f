package sessions

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

type Repo interface {
	Create(ctx context.Context, session Session) error
	GetByID(ctx context.Context, sessionID string) (Session, error)
	End(ctx context.Context, sessionID string, at time.Time) error
}
