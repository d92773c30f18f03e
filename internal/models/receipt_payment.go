package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptPayment records money paid against a receipt. Several payments may
// cover one receipt (split payments across methods). The payment method is
// nullable so deleting a method keeps the payment history.
type ReceiptPayment struct {
	Base
	ReceiptID       uint            `gorm:"not null;index" json:"receipt_id"`
	PaymentMethodID *uint           `gorm:"index" json:"payment_method_id,omitempty"`
	AmountPaid      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount_paid"`
	PaidAt          time.Time       `gorm:"not null;index" json:"paid_at"`

	// Relationships
	Receipt       Receipt        `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"-"`
	PaymentMethod *PaymentMethod `gorm:"foreignKey:PaymentMethodID;constraint:OnDelete:SET NULL" json:"payment_method,omitempty"`
}
