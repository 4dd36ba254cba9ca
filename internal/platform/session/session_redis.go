// Package session provides a Redis-backed session repository.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stockdash/internal/feature/session/domain/entity"
	"stockdash/internal/feature/session/usecase"
)

// SessionRedis implements usecase.SessionRepository using Redis. Records
// expire together with the vendor token, so stale sessions clean themselves
// up without a sweeper.
type SessionRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.SessionRepository = (*SessionRedis)(nil)

// NewSessionRedis creates a new SessionRedis instance.
func NewSessionRedis(client *redis.Client, prefix string) *SessionRedis {
	return &SessionRedis{client: client, prefix: prefix}
}

func (r *SessionRedis) key(userID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, userID)
}

// Save persists the session with a TTL matching its expiry.
func (r *SessionRedis) Save(ctx context.Context, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	return r.client.Set(ctx, r.key(session.UserID), data, ttl).Err()
}

// FindByUserID retrieves the session record for a user id.
func (r *SessionRedis) FindByUserID(ctx context.Context, userID string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Deactivate marks the stored session inactive, keeping its remaining TTL.
func (r *SessionRedis) Deactivate(ctx context.Context, userID string) error {
	session, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	session.Active = false

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		// Expired while deactivating; nothing left to keep.
		return r.client.Del(ctx, r.key(userID)).Err()
	}
	return r.client.Set(ctx, r.key(userID), data, ttl).Err()
}
