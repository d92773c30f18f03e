package models

// User represents the user model in the database
type User struct {
	Base
	Username      string         `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email         string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password      string         `gorm:"not null" json:"-"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	Receipts      []Receipt      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"receipts,omitempty"`
	Budgets       []Budget       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"budgets,omitempty"`
	Notifications []Notification `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"notifications,omitempty"`
}
