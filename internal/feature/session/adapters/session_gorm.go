// Package adapters provides repository implementations for the session feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockdash/internal/feature/session/domain/entity"
	"stockdash/internal/feature/session/usecase"
)

// sessionGorm is a GORM implementation of the SessionRepository interface.
type sessionGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure sessionGorm implements SessionRepository.
var _ usecase.SessionRepository = (*sessionGorm)(nil)

// NewSessionGorm creates a new instance of sessionGorm.
func NewSessionGorm(db *gorm.DB) *sessionGorm {
	return &sessionGorm{db: db}
}

// Save creates or refreshes the session row for the user id. The unique
// index on user_id turns a second authentication into an update.
func (r *sessionGorm) Save(ctx context.Context, session *entity.Session) error {
	model := SessionModelFromEntity(session)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "active", "created_at", "expires_at"}),
	}).Create(model).Error
}

// FindByUserID retrieves the session record for a user id.
func (r *sessionGorm) FindByUserID(ctx context.Context, userID string) (*entity.Session, error) {
	var model SessionModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Deactivate marks the user's session record inactive.
func (r *sessionGorm) Deactivate(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("user_id = ?", userID).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}
