package models

// Notification is a message created for a user as a side effect of receipt
// and budget mutations. Once marked read it stays read.
type Notification struct {
	Base
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Message string `gorm:"not null" json:"message"`
	IsRead  bool   `gorm:"default:false" json:"is_read"`
}
