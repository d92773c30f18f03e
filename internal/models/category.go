package models

// Category represents a shared expense category (e.g. Groceries, Utilities).
// Categories are reference data and are not scoped to a single user.
type Category struct {
	Base
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `json:"description"`

	// Relationships
	Receipts []Receipt `gorm:"foreignKey:CategoryID" json:"receipts,omitempty"`
	Budgets  []Budget  `gorm:"foreignKey:CategoryID" json:"budgets,omitempty"`
}
