package models

import "github.com/shopspring/decimal"

// ReceiptItem is a priced line item belonging to one receipt.
// TotalPrice must equal Quantity times UnitPrice exactly.
type ReceiptItem struct {
	Base
	ReceiptID  uint            `gorm:"not null;index" json:"receipt_id"`
	ItemName   string          `gorm:"size:255;not null" json:"item_name"`
	Quantity   uint            `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`

	// Relationships
	Receipt Receipt `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"-"`
}
