package models

import "time"

// AlertCondition represents the direction of a price alert.
type AlertCondition string

const (
	AlertConditionAbove AlertCondition = "above"
	AlertConditionBelow AlertCondition = "below"
)

// Alert represents a price alert on a symbol. Triggered alerts stay on
// record with TriggeredAt set; they no longer count toward plan limits
// once deactivated.
type Alert struct {
	Base
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Symbol      string         `gorm:"not null" json:"symbol"`
	Condition   AlertCondition `gorm:"not null" json:"condition"`
	Threshold   int64          `gorm:"type:bigint;not null" json:"threshold"` // cents
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	TriggeredAt *time.Time     `json:"triggered_at,omitempty"`
}
