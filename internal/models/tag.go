package models

// Tag is a user-defined label like "Work" or "Reimbursable". Tags are shared
// reference data; the link to a receipt carries the ownership.
type Tag struct {
	Base
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
}

// ReceiptTag is the many-to-many join between receipts and tags.
type ReceiptTag struct {
	Base
	ReceiptID uint `gorm:"not null;uniqueIndex:idx_receipt_tag" json:"receipt_id"`
	TagID     uint `gorm:"not null;uniqueIndex:idx_receipt_tag" json:"tag_id"`

	// Relationships
	Receipt Receipt `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"-"`
	Tag     Tag     `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"tag,omitempty"`
}
