// Package usecase implements the business logic for the vendor session.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"stockdash/internal/feature/session/domain/entity"
)

// sessionTTL is the vendor's fixed validity window for a daily token.
const sessionTTL = 8 * time.Hour

// Authenticator abstracts the vendor session client.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (platform).
type Authenticator interface {
	// Authenticate validates the daily token and returns the normalized
	// result. A returned error means the vendor was unreachable.
	Authenticate(ctx context.Context) (entity.AuthResult, error)

	// Connected reports whether the last Authenticate succeeded.
	Connected() bool
}

// SessionRepository abstracts the persistence layer for session records.
type SessionRepository interface {
	// Save creates or refreshes the session record for its user id.
	Save(ctx context.Context, session *entity.Session) error

	// FindByUserID retrieves the session record for a user id.
	// Returns ErrSessionNotFound if none exists.
	FindByUserID(ctx context.Context, userID string) (*entity.Session, error)

	// Deactivate marks the user's session record inactive.
	Deactivate(ctx context.Context, userID string) error
}

// SessionUsecase establishes the vendor session and keeps the stored session
// record in step with the connection outcome.
type SessionUsecase struct {
	client   Authenticator
	sessions SessionRepository
	userID   string
	token    string
}

// NewSessionUsecase creates a new SessionUsecase.
func NewSessionUsecase(client Authenticator, sessions SessionRepository, userID, token string) *SessionUsecase {
	return &SessionUsecase{client: client, sessions: sessions, userID: userID, token: token}
}

// Connect authenticates against the vendor. On success it persists or
// refreshes a session record valid for eight hours; on failure it marks any
// existing record inactive. The returned bool is the connection outcome; the
// error is non-nil only for transport-level failures.
func (u *SessionUsecase) Connect(ctx context.Context) (bool, error) {
	res, err := u.client.Authenticate(ctx)
	if err != nil {
		slog.Error("vendor authentication failed", "user_id", u.userID, "error", err)
		u.deactivate(ctx)
		return false, err
	}
	if !res.OK {
		slog.Error("vendor rejected session", "user_id", u.userID, "message", res.Message)
		u.deactivate(ctx)
		return false, nil
	}

	now := time.Now()
	session := &entity.Session{
		UserID:    res.UserID,
		Token:     u.token,
		Active:    true,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}
	if err := u.sessions.Save(ctx, session); err != nil {
		// The live connection is usable either way; the record is bookkeeping.
		slog.Warn("failed to persist session record", "user_id", u.userID, "error", err)
	}

	slog.Info("vendor session established", "user_id", res.UserID, "expires_at", session.ExpiresAt)
	return true, nil
}

// Connected reports whether the vendor session is currently established.
func (u *SessionUsecase) Connected() bool {
	return u.client.Connected()
}

// Current returns the stored session record for the configured user.
func (u *SessionUsecase) Current(ctx context.Context) (*entity.Session, error) {
	return u.sessions.FindByUserID(ctx, u.userID)
}

func (u *SessionUsecase) deactivate(ctx context.Context) {
	if err := u.sessions.Deactivate(ctx, u.userID); err != nil && err != ErrSessionNotFound {
		slog.Warn("failed to deactivate session record", "user_id", u.userID, "error", err)
	}
}
