package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a per-category spending limit for a user over a closed date range.
// The period check (period_end >= period_start) is also enforced as a database
// CHECK constraint in the migrations.
type Budget struct {
	Base
	UserID      uint            `gorm:"not null;uniqueIndex:idx_budget_window" json:"user_id"`
	CategoryID  uint            `gorm:"not null;uniqueIndex:idx_budget_window" json:"category_id"`
	AmountLimit decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount_limit"`
	PeriodStart time.Time       `gorm:"type:date;not null;uniqueIndex:idx_budget_window" json:"period_start"`
	PeriodEnd   time.Time       `gorm:"type:date;not null;uniqueIndex:idx_budget_window" json:"period_end"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category"`
}
