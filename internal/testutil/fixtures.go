package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"kvitto/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active user with a hashed password and unique
// username and email. The plaintext password is always "password123".
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithUsername(t, db, fmt.Sprintf("user%d", nextID()))
}

// CreateTestUserWithUsername creates a user with the given username.
func CreateTestUserWithUsername(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@test.com", username),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:        fmt.Sprintf("Test Category %d", nextID()),
		Description: "fixture category",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestPaymentMethod creates a payment method with a unique name.
func CreateTestPaymentMethod(t *testing.T, db *gorm.DB) *models.PaymentMethod {
	t.Helper()

	method := &models.PaymentMethod{
		Name:      fmt.Sprintf("Test Method %d", nextID()),
		IsDigital: true,
	}
	if err := db.Create(method).Error; err != nil {
		t.Fatalf("failed to create test payment method: %v", err)
	}
	return method
}

// CreateTestTag creates a tag with a unique name.
func CreateTestTag(t *testing.T, db *gorm.DB) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: fmt.Sprintf("tag%d", nextID())}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestReceipt creates a receipt dated today with the given amount.
func CreateTestReceipt(t *testing.T, db *gorm.DB, userID uint, amount string) *models.Receipt {
	t.Helper()
	return CreateTestReceiptOnDate(t, db, userID, amount, Today())
}

// CreateTestReceiptOnDate creates a receipt with the given amount and purchase date.
func CreateTestReceiptOnDate(t *testing.T, db *gorm.DB, userID uint, amount string, purchaseDate time.Time) *models.Receipt {
	t.Helper()

	receipt := &models.Receipt{
		UserID:       userID,
		StoreName:    fmt.Sprintf("Test Store %d", nextID()),
		TotalAmount:  MustDecimal(t, amount),
		Currency:     "KES",
		PurchaseDate: purchaseDate,
	}
	if err := db.Create(receipt).Error; err != nil {
		t.Fatalf("failed to create test receipt: %v", err)
	}
	return receipt
}

// CreateTestItem creates a consistent line item on the given receipt.
func CreateTestItem(t *testing.T, db *gorm.DB, receiptID uint) *models.ReceiptItem {
	t.Helper()

	item := &models.ReceiptItem{
		ReceiptID:  receiptID,
		ItemName:   fmt.Sprintf("Test Item %d", nextID()),
		Quantity:   2,
		UnitPrice:  MustDecimal(t, "5.00"),
		TotalPrice: MustDecimal(t, "10.00"),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test item: %v", err)
	}
	return item
}

// CreateTestPayment records a payment on the given receipt.
func CreateTestPayment(t *testing.T, db *gorm.DB, receiptID uint, methodID *uint, amount string) *models.ReceiptPayment {
	t.Helper()

	payment := &models.ReceiptPayment{
		ReceiptID:       receiptID,
		PaymentMethodID: methodID,
		AmountPaid:      MustDecimal(t, amount),
		PaidAt:          time.Now(),
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create test payment: %v", err)
	}
	return payment
}

// CreateTestBudget creates a budget starting today and running 30 days.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID uint) *models.Budget {
	t.Helper()

	start := Today()
	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  categoryID,
		AmountLimit: MustDecimal(t, "100.00"),
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 0, 30),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestNotification records a notification for the user.
func CreateTestNotification(t *testing.T, db *gorm.DB, userID uint, message string) *models.Notification {
	t.Helper()

	n := &models.Notification{UserID: userID, Message: message}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}

// MustDecimal parses a decimal string, failing the test on bad input.
func MustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal fixture %q: %v", s, err)
	}
	return d
}

// Today returns the current date at UTC midnight, matching how purchase
// dates are stored.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
