// Package entity defines the domain models for the marketdata feature.
package entity

import (
	"time"

	instentity "stockdash/internal/feature/instruments/domain/entity"
)

// Candle is one OHLCV bar for a stock at a given interval.
// Immutable once created; uniqueness on (stock, timestamp, interval) is what
// makes re-ingestion of overlapping ranges idempotent. Rows are owned by
// their stock and dropped with it.
type Candle struct {
	ID        uint             `gorm:"primaryKey"`
	StockID   uint             `gorm:"not null;uniqueIndex:idx_candle_stock_ts_int,priority:1"`
	Stock     instentity.Stock `gorm:"constraint:OnDelete:CASCADE"`
	Timestamp time.Time        `gorm:"not null;uniqueIndex:idx_candle_stock_ts_int,priority:2"`
	Interval  int              `gorm:"not null;default:5;uniqueIndex:idx_candle_stock_ts_int,priority:3"`
	Open      float64          `gorm:"not null"`
	High      float64          `gorm:"not null"`
	Low       float64          `gorm:"not null"`
	Close     float64          `gorm:"not null"`
	Volume    int64            `gorm:"not null;default:0"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
}

// IndexCandle is the index variant of Candle. Indices have no traded volume.
type IndexCandle struct {
	ID        uint             `gorm:"primaryKey"`
	IndexID   uint             `gorm:"not null;uniqueIndex:idx_icandle_index_ts_int,priority:1"`
	Index     instentity.Index `gorm:"constraint:OnDelete:CASCADE"`
	Timestamp time.Time        `gorm:"not null;uniqueIndex:idx_icandle_index_ts_int,priority:2"`
	Interval  int              `gorm:"not null;default:5;uniqueIndex:idx_icandle_index_ts_int,priority:3"`
	Open      float64          `gorm:"not null"`
	High      float64          `gorm:"not null"`
	Low       float64          `gorm:"not null"`
	Close     float64          `gorm:"not null"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
}

// Quote is one last-traded-price snapshot for a stock. Append-only: every
// successful fetch creates a new row rather than mutating a current one.
type Quote struct {
	ID            uint             `gorm:"primaryKey"`
	StockID       uint             `gorm:"not null;index"`
	Stock         instentity.Stock `gorm:"constraint:OnDelete:CASCADE"`
	LTP           float64          `gorm:"not null"`
	Open          float64          `gorm:"not null"`
	High          float64          `gorm:"not null"`
	Low           float64          `gorm:"not null"`
	Volume        int64            `gorm:"not null;default:0"`
	Change        float64          `gorm:"not null;default:0"`
	ChangePercent float64          `gorm:"not null;default:0"`
	CreatedAt     time.Time        `gorm:"autoCreateTime"`
}

// IndexQuote is the index variant of Quote, without volume.
type IndexQuote struct {
	ID            uint             `gorm:"primaryKey"`
	IndexID       uint             `gorm:"not null;index"`
	Index         instentity.Index `gorm:"constraint:OnDelete:CASCADE"`
	LTP           float64          `gorm:"not null"`
	Open          float64          `gorm:"not null"`
	High          float64          `gorm:"not null"`
	Low           float64          `gorm:"not null"`
	Change        float64          `gorm:"not null;default:0"`
	ChangePercent float64          `gorm:"not null;default:0"`
	CreatedAt     time.Time        `gorm:"autoCreateTime"`
}

// VendorQuote is a quote as returned by the vendor, before it is attached to
// a stored instrument. Missing numeric fields default to zero.
type VendorQuote struct {
	Token         string
	LTP           float64
	Open          float64
	High          float64
	Low           float64
	Volume        int64
	Change        float64
	ChangePercent float64
}

// VendorCandle is one time-series bar as returned by the vendor. Time is kept
// as the vendor's raw string ("DD-MM-YYYY HH:MM:SS"); parsing and the
// skip-on-unparseable policy belong to the ingestion usecase.
type VendorCandle struct {
	Time   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}
