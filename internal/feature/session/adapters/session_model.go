package adapters

import (
	"time"

	"stockdash/internal/feature/session/domain/entity"
)

// SessionModel is the GORM persistence model for vendor sessions. At most
// one row exists per user id.
type SessionModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"size:50;not null;uniqueIndex"`
	Token     string    `gorm:"type:text;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

func (SessionModel) TableName() string {
	return "sessions"
}

// SessionModelFromEntity converts a domain session into its persistence model.
func SessionModelFromEntity(s *entity.Session) *SessionModel {
	return &SessionModel{
		UserID:    s.UserID,
		Token:     s.Token,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

// ToEntity converts the persistence model back into a domain session.
func (m *SessionModel) ToEntity() *entity.Session {
	return &entity.Session{
		UserID:    m.UserID,
		Token:     m.Token,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
	}
}
