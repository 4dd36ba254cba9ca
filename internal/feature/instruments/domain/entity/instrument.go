// Package entity defines the domain models for the instruments feature.
package entity

import "time"

// Kind distinguishes the two tradable instrument variants.
type Kind string

const (
	KindStock Kind = "stock"
	KindIndex Kind = "index"
)

// Stock represents an equity instrument known to the system.
// Symbol and Token are both unique: the vendor addresses a scrip by its
// numeric token, the UI addresses it by its trading symbol.
type Stock struct {
	ID          uint      `gorm:"primaryKey"`
	Symbol      string    `gorm:"size:50;not null;uniqueIndex"`
	Token       string    `gorm:"size:20;not null;uniqueIndex"`
	Exchange    string    `gorm:"size:10;not null;default:NSE"`
	CompanyName string    `gorm:"size:200"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Index represents a market index. Unlike stocks the same symbol can appear
// under more than one vendor token (old and new token ranges), so uniqueness
// is on the (symbol, token) pair.
type Index struct {
	ID        uint      `gorm:"primaryKey"`
	Symbol    string    `gorm:"size:50;not null;uniqueIndex:idx_index_sym_token,priority:1"`
	Token     string    `gorm:"size:20;not null;uniqueIndex:idx_index_sym_token,priority:2"`
	Exchange  string    `gorm:"size:10;not null;default:NSE"`
	Name      string    `gorm:"size:200"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Instrument is the resolution result handed to callers: a flattened view
// over the Stock and Index variants.
type Instrument struct {
	Kind     Kind
	ID       uint
	Symbol   string
	Token    string
	Exchange string
	Name     string
}

// SearchResult is one scrip entry returned by the vendor's search endpoint,
// tagged with the exchange the search ran against (the vendor response does
// not carry it).
type SearchResult struct {
	Symbol      string
	Token       string
	Exchange    string
	InstName    string
	CompanyName string
}
