package health

import (
	"context"
	"database/sql"
	"time"

	"ui-feedback-backend/internal/shared/storage/db"
)

const pingTimeout = 2 * time.Second

// Status is the health payload served to load balancers.
type Status struct {
	OK      bool   `json:"ok"`
	Storage string `json:"storage"`
}

// Service encapsulates health-related checks.
type Service struct {
	db *sql.DB
}

// NewService constructs a health service. A nil db means in-memory storage.
func NewService(sqlDB *sql.DB) *Service {
	return &Service{db: sqlDB}
}

// Status reports which storage backs the API and whether it answers.
func (s *Service) Status(ctx context.Context) (Status, error) {
	st := Status{OK: true, Storage: "memory"}
	if s.db != nil {
		st.Storage = "postgres"
	}
	if err := db.Ping(ctx, s.db, pingTimeout); err != nil {
		st.OK = false
		return st, err
	}
	return st, nil
}
