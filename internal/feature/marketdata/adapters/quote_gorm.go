package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stockdash/internal/feature/marketdata/domain/entity"
	"stockdash/internal/feature/marketdata/usecase"
)

type quoteGorm struct {
	db *gorm.DB
}

var _ usecase.QuoteRepository = (*quoteGorm)(nil)

func NewQuoteRepository(db *gorm.DB) *quoteGorm {
	return &quoteGorm{db: db}
}

// Create appends one quote snapshot. Quotes are a log, never an update.
func (r *quoteGorm) Create(ctx context.Context, quote *entity.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

// CreateIndexQuote appends one index quote snapshot.
func (r *quoteGorm) CreateIndexQuote(ctx context.Context, quote *entity.IndexQuote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

// Latest returns the newest quote snapshot for a stock, or nil when none
// exists.
func (r *quoteGorm) Latest(ctx context.Context, stockID uint) (*entity.Quote, error) {
	var row entity.Quote
	err := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// LatestIndexQuote is the index variant of Latest.
func (r *quoteGorm) LatestIndexQuote(ctx context.Context, indexID uint) (*entity.IndexQuote, error) {
	var row entity.IndexQuote
	err := r.db.WithContext(ctx).
		Where("index_id = ?", indexID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Recent returns the newest quote snapshots across all stocks for the
// dashboard.
func (r *quoteGorm) Recent(ctx context.Context, limit int) ([]entity.Quote, error) {
	var rows []entity.Quote
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// CountAll returns the total number of stored quote snapshots.
func (r *quoteGorm) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Quote{}).Count(&n).Error
	return n, err
}
