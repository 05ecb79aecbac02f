package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedauth "ui-feedback-backend/internal/shared/auth"
	"ui-feedback-backend/internal/shared/server/middleware"
	"ui-feedback-backend/internal/shared/telemetry"
)

var (
	ErrInvalidEmail = errors.New("valid email is required")
	ErrInactive     = errors.New("session ended or expired")
)

const defaultTTL = 24 * time.Hour

type Service struct {
	Repo Repo
	TTL  time.Duration
	Now  func() time.Time
	// OnEnd hooks run after a session is signed out.
	OnEnd []func(sessionID string)
}

func NewService(repo Repo, ttl time.Duration) *Service {
	return &Service{Repo: repo, TTL: ttl}
}

// SignIn opens a new session for email and returns it with its bearer token.
func (s *Service) SignIn(ctx context.Context, email string) (Session, string, error) {
	if s == nil || s.Repo == nil {
		return Session{}, "", errors.New("sessions service not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return Session{}, "", ErrInvalidEmail
	}

	now := s.now()
	session := Session{
		ID:        uuid.NewString(),
		UserID:    UserIDFromEmail(email),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}
	if err := s.Repo.Create(ctx, session); err != nil {
		return Session{}, "", fmt.Errorf("create session: %w", err)
	}

	token, err := sharedauth.SignJWT(sharedauth.Claims{
		Sub:   session.UserID,
		Sid:   session.ID,
		Email: session.Email,
		Iat:   now.Unix(),
		Exp:   session.ExpiresAt.Unix(),
	})
	if err != nil {
		return Session{}, "", fmt.Errorf("sign token: %w", err)
	}

	telemetry.Info("session.start", map[string]any{
		"user_id":    session.UserID,
		"session_id": session.ID,
	})
	return session, token, nil
}

// SignOut ends the session. Tokens naming it stop resolving immediately.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if s == nil || s.Repo == nil {
		return errors.New("sessions service not configured")
	}
	if strings.TrimSpace(sessionID) == "" {
		return ErrNotFound
	}
	if err := s.Repo.End(ctx, sessionID, s.now()); err != nil {
		return err
	}
	for _, hook := range s.OnEnd {
		hook(sessionID)
	}
	telemetry.Info("session.end", map[string]any{"session_id": sessionID})
	return nil
}

// Get returns a session by id.
func (s *Service) Get(ctx context.Context, sessionID string) (Session, error) {
	if s == nil || s.Repo == nil {
		return Session{}, errors.New("sessions service not configured")
	}
	return s.Repo.GetByID(ctx, sessionID)
}

// Resolve verifies token and checks that its session is still active.
// It satisfies middleware.Resolver.
func (s *Service) Resolve(ctx context.Context, token string) (middleware.Identity, error) {
	claims, err := sharedauth.VerifyJWT(token)
	if err != nil {
		return middleware.Identity{}, err
	}
	session, err := s.Get(ctx, claims.Sid)
	if err != nil {
		return middleware.Identity{}, err
	}
	if session.UserID != claims.Sub || !session.Active(s.now()) {
		return middleware.Identity{}, ErrInactive
	}
	return middleware.Identity{
		UserID:    session.UserID,
		SessionID: session.ID,
		Email:     session.Email,
	}, nil
}

func (s *Service) ttl() time.Duration {
	if s.TTL <= 0 {
		return defaultTTL
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
