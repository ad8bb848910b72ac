package models

import (
	"time"

	"stockpilot/internal/entitlement"
)

// User represents the user model in the database
type User struct {
	Base
	Email               string           `gorm:"uniqueIndex;not null" json:"email"`
	Password            string           `gorm:"not null" json:"-"`
	FirstName           string           `json:"first_name"`
	LastName            string           `json:"last_name"`
	Plan                entitlement.Plan `gorm:"not null;default:'free'" json:"plan"`
	PlanChangedAt       *time.Time       `json:"plan_changed_at,omitempty"`
	IsActive            bool             `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string           `gorm:"size:64" json:"-"`
	FailedLoginAttempts int              `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time       `json:"-"`
	LastLoginAt         *time.Time       `json:"last_login_at,omitempty"`
	Holdings            []Holding        `gorm:"foreignKey:UserID" json:"holdings,omitempty"`
	WatchlistItems      []WatchlistItem  `gorm:"foreignKey:UserID" json:"watchlist_items,omitempty"`
	Alerts              []Alert          `gorm:"foreignKey:UserID" json:"alerts,omitempty"`
}
