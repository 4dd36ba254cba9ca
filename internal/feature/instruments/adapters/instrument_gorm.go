// Package adapters provides repository implementations for the instruments feature.
package adapters

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"stockdash/internal/feature/instruments/domain/entity"
	"stockdash/internal/feature/instruments/usecase"
)

type instrumentGorm struct {
	db *gorm.DB
}

var _ usecase.InstrumentRepository = (*instrumentGorm)(nil)

func NewInstrumentRepository(db *gorm.DB) *instrumentGorm {
	return &instrumentGorm{db: db}
}

// GetOrCreateStock returns the stock for the symbol, creating it if absent.
// A uniqueness collision (concurrent create, or a token already claimed by
// another symbol) resolves to the existing row.
func (r *instrumentGorm) GetOrCreateStock(ctx context.Context, stock entity.Stock) (entity.Stock, error) {
	var out entity.Stock
	err := r.db.WithContext(ctx).
		Where(entity.Stock{Symbol: stock.Symbol}).
		Attrs(entity.Stock{
			Token:       stock.Token,
			Exchange:    stock.Exchange,
			CompanyName: stock.CompanyName,
		}).
		FirstOrCreate(&out).Error
	if err == nil {
		return out, nil
	}
	if isDuplicateErr(err) {
		// Lost a race or the token belongs to an existing row: either way
		// the instrument exists, find it.
		if ferr := r.db.WithContext(ctx).
			Where("symbol = ? OR token = ?", stock.Symbol, stock.Token).
			First(&out).Error; ferr == nil {
			return out, nil
		}
	}
	return entity.Stock{}, err
}

// GetOrCreateIndex returns the index for the (symbol, token) pair, creating
// it if absent.
func (r *instrumentGorm) GetOrCreateIndex(ctx context.Context, index entity.Index) (entity.Index, error) {
	var out entity.Index
	err := r.db.WithContext(ctx).
		Where(entity.Index{Symbol: index.Symbol, Token: index.Token}).
		Attrs(entity.Index{Exchange: index.Exchange, Name: index.Name}).
		FirstOrCreate(&out).Error
	if err == nil {
		return out, nil
	}
	if isDuplicateErr(err) {
		if ferr := r.db.WithContext(ctx).
			Where("symbol = ? AND token = ?", index.Symbol, index.Token).
			First(&out).Error; ferr == nil {
			return out, nil
		}
	}
	return entity.Index{}, err
}

// EnsureStaticIndex get-or-creates by symbol, forcing token and name to the
// static table's values. Assign makes the table authoritative even when a
// live search stored a different token for the symbol earlier.
func (r *instrumentGorm) EnsureStaticIndex(ctx context.Context, index entity.Index) (entity.Index, error) {
	var out entity.Index
	err := r.db.WithContext(ctx).
		Where(entity.Index{Symbol: index.Symbol}).
		Assign(entity.Index{
			Token:    index.Token,
			Exchange: index.Exchange,
			Name:     index.Name,
		}).
		FirstOrCreate(&out).Error
	if err != nil {
		return entity.Index{}, err
	}
	return out, nil
}

// SearchLocal matches stored stocks and indices by case-insensitive symbol
// or name substring.
func (r *instrumentGorm) SearchLocal(ctx context.Context, query string) ([]entity.Stock, []entity.Index, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	var stocks []entity.Stock
	if err := r.db.WithContext(ctx).
		Where("LOWER(symbol) LIKE ? OR LOWER(company_name) LIKE ?", pattern, pattern).
		Order("symbol ASC").
		Find(&stocks).Error; err != nil {
		return nil, nil, err
	}

	var indices []entity.Index
	if err := r.db.WithContext(ctx).
		Where("LOWER(symbol) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern).
		Order("symbol ASC").
		Find(&indices).Error; err != nil {
		return nil, nil, err
	}

	return stocks, indices, nil
}

// FindStockByID retrieves a stock by primary key.
func (r *instrumentGorm) FindStockByID(ctx context.Context, id uint) (entity.Stock, error) {
	var out entity.Stock
	err := r.db.WithContext(ctx).First(&out, id).Error
	return out, err
}

// FindIndexByID retrieves an index by primary key.
func (r *instrumentGorm) FindIndexByID(ctx context.Context, id uint) (entity.Index, error) {
	var out entity.Index
	err := r.db.WithContext(ctx).First(&out, id).Error
	return out, err
}

// ListStocks returns up to limit stocks ordered by symbol.
func (r *instrumentGorm) ListStocks(ctx context.Context, limit int) ([]entity.Stock, error) {
	var out []entity.Stock
	q := r.db.WithContext(ctx).Order("symbol ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListIndices returns up to limit indices ordered by symbol.
func (r *instrumentGorm) ListIndices(ctx context.Context, limit int) ([]entity.Index, error) {
	var out []entity.Index
	q := r.db.WithContext(ctx).Order("symbol ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountStocks returns the number of stored stocks.
func (r *instrumentGorm) CountStocks(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Stock{}).Count(&n).Error
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
