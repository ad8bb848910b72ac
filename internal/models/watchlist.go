package models

// WatchlistItem represents a symbol a user is tracking without holding it.
type WatchlistItem struct {
	Base
	UserID uint   `gorm:"not null;uniqueIndex:uq_watchlist_user_symbol" json:"user_id"`
	Symbol string `gorm:"not null;uniqueIndex:uq_watchlist_user_symbol" json:"symbol"`
}
