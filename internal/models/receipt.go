package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is a single purchase record owned by a user. Deleting a receipt
// cascades to its items, payments, and tag links.
type Receipt struct {
	Base
	UserID       uint            `gorm:"not null;index:idx_receipt_user_date" json:"user_id"`
	CategoryID   *uint           `gorm:"index" json:"category_id,omitempty"`
	StoreName    string          `gorm:"size:255;not null" json:"store_name"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Currency     string          `gorm:"size:10;default:KES" json:"currency"`
	PurchaseDate time.Time       `gorm:"type:date;not null;index:idx_receipt_user_date" json:"purchase_date"`
	Notes        string          `json:"notes"`

	// Relationships
	Category *Category        `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Items    []ReceiptItem    `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments []ReceiptPayment `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	Tags     []ReceiptTag     `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}
