package models

// PaymentMethod represents a shared payment method (e.g. Cash, Card, M-Pesa).
type PaymentMethod struct {
	Base
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `json:"description"`
	IsDigital   bool   `gorm:"default:false" json:"is_digital"`

	// Relationships
	Payments []ReceiptPayment `gorm:"foreignKey:PaymentMethodID" json:"payments,omitempty"`
}
