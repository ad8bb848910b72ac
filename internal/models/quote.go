package models

import "time"

// QuoteSource records where a quote came from.
type QuoteSource string

const (
	QuoteSourceProvider QuoteSource = "provider"
	QuoteSourceDemo     QuoteSource = "demo"
)

// Quote represents one price observation for a symbol.
// This is immutable time-series data: no Base embed, no soft deletes.
// The newest row per symbol is the current price.
type Quote struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Symbol     string      `gorm:"not null;index:idx_quotes_symbol_recorded" json:"symbol"`
	Price      int64       `gorm:"type:bigint;not null" json:"price"`              // cents
	DayChange  int64       `gorm:"type:bigint;not null;default:0" json:"day_change"` // per-share delta since prior close, cents, signed
	Source     QuoteSource `gorm:"not null;default:'provider'" json:"source"`
	RecordedAt time.Time   `gorm:"not null;index:idx_quotes_symbol_recorded" json:"recorded_at"`
}
