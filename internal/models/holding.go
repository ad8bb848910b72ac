package models

import "time"

// Holding represents one stock position in a user's portfolio.
// Prices are stored as int64 cents; quantities may be fractional.
type Holding struct {
	Base
	UserID       uint       `gorm:"not null;uniqueIndex:uq_holdings_user_symbol" json:"user_id"`
	Symbol       string     `gorm:"not null;uniqueIndex:uq_holdings_user_symbol" json:"symbol"`
	Shares       float64    `gorm:"not null" json:"shares"`
	AvgCost      int64      `gorm:"type:bigint;not null" json:"avg_cost"` // cost basis per share, in cents
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}
