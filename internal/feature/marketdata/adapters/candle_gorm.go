// Package adapters provides repository implementations for the marketdata feature.
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"stockdash/internal/feature/marketdata/domain/entity"
	"stockdash/internal/feature/marketdata/usecase"
)

type candleGorm struct {
	db *gorm.DB
}

var _ usecase.CandleRepository = (*candleGorm)(nil)

func NewCandleRepository(db *gorm.DB) *candleGorm {
	return &candleGorm{db: db}
}

// GetOrCreate persists the candle unless its (stock, timestamp, interval)
// key already exists. A uniqueness collision from a concurrent insert is
// folded into "already exists".
func (r *candleGorm) GetOrCreate(ctx context.Context, candle *entity.Candle) (bool, error) {
	res := r.db.WithContext(ctx).
		Where(map[string]any{
			"stock_id":  candle.StockID,
			"timestamp": candle.Timestamp,
			"interval":  candle.Interval,
		}).
		Attrs(entity.Candle{
			Open:   candle.Open,
			High:   candle.High,
			Low:    candle.Low,
			Close:  candle.Close,
			Volume: candle.Volume,
		}).
		FirstOrCreate(candle)
	if res.Error != nil {
		if isDuplicateErr(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetOrCreateIndexCandle is the index variant of GetOrCreate.
func (r *candleGorm) GetOrCreateIndexCandle(ctx context.Context, candle *entity.IndexCandle) (bool, error) {
	res := r.db.WithContext(ctx).
		Where(map[string]any{
			"index_id":  candle.IndexID,
			"timestamp": candle.Timestamp,
			"interval":  candle.Interval,
		}).
		Attrs(entity.IndexCandle{
			Open:  candle.Open,
			High:  candle.High,
			Low:   candle.Low,
			Close: candle.Close,
		}).
		FirstOrCreate(candle)
	if res.Error != nil {
		if isDuplicateErr(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// LatestCreatedAt returns the insertion time of the newest candle for the
// key, or the zero time when none exists.
func (r *candleGorm) LatestCreatedAt(ctx context.Context, stockID uint, interval int) (time.Time, error) {
	var row entity.Candle
	err := r.db.WithContext(ctx).
		Where(map[string]any{"stock_id": stockID, "interval": interval}).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return row.CreatedAt, nil
}

// LatestIndexCreatedAt is the index variant of LatestCreatedAt.
func (r *candleGorm) LatestIndexCreatedAt(ctx context.Context, indexID uint, interval int) (time.Time, error) {
	var row entity.IndexCandle
	err := r.db.WithContext(ctx).
		Where(map[string]any{"index_id": indexID, "interval": interval}).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return row.CreatedAt, nil
}

// Find returns candles for the key, newest first, with limit/offset
// pagination for the detail pages.
func (r *candleGorm) Find(ctx context.Context, stockID uint, interval, limit, offset int) ([]entity.Candle, error) {
	var rows []entity.Candle
	q := r.db.WithContext(ctx).
		Where(map[string]any{"stock_id": stockID, "interval": interval}).
		Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&rows).Error
	return rows, err
}

// FindIndexCandles is the index variant of Find.
func (r *candleGorm) FindIndexCandles(ctx context.Context, indexID uint, interval, limit, offset int) ([]entity.IndexCandle, error) {
	var rows []entity.IndexCandle
	q := r.db.WithContext(ctx).
		Where(map[string]any{"index_id": indexID, "interval": interval}).
		Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&rows).Error
	return rows, err
}

// Recent returns the newest candles across all stocks for the dashboard.
func (r *candleGorm) Recent(ctx context.Context, limit int) ([]entity.Candle, error) {
	var rows []entity.Candle
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Count returns the number of candles stored for a key.
func (r *candleGorm) Count(ctx context.Context, stockID uint, interval int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&entity.Candle{}).
		Where(map[string]any{"stock_id": stockID, "interval": interval}).
		Count(&n).Error
	return n, err
}

// CountIndexCandles returns the number of index candles stored for a key.
func (r *candleGorm) CountIndexCandles(ctx context.Context, indexID uint, interval int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&entity.IndexCandle{}).
		Where(map[string]any{"index_id": indexID, "interval": interval}).
		Count(&n).Error
	return n, err
}

// CountAll returns the total number of stored stock candles.
func (r *candleGorm) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Candle{}).Count(&n).Error
	return n, err
}

// isDuplicateErr reports whether err is a uniqueness-constraint violation.
// gorm translates these for the Postgres driver; SQLite surfaces them as
// textual constraint errors, so match both.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
