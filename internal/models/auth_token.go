package models

// AuthToken stores a user's opaque API token key. One token per user; login
// returns the existing key, and logout deletes the row which revokes it.
type AuthToken struct {
	Base
	UserID uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	Key    string `gorm:"size:40;uniqueIndex;not null" json:"-"`
}
