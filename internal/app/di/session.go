package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	sessadapters "stockdash/internal/feature/session/adapters"
	"stockdash/internal/feature/session/usecase"
	"stockdash/internal/platform/session"
)

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the relational database.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session")
	}
	return sessadapters.NewSessionGorm(db)
}
