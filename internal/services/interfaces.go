package services

import (
	"time"

	"github.com/shopspring/decimal"

	"kvitto/internal/models"
	"kvitto/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(username, email, password string) (*models.User, error)
	AttemptLogin(username, password string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	UpdateProfile(userID uint, username, email *string) (*models.User, error)
	Deactivate(userID uint) error
}

// TokenServicer manages opaque API tokens. A user holds one token; Issue
// returns the existing key until Revoke deletes it.
type TokenServicer interface {
	Issue(userID uint) (string, error)
	Authenticate(token string) (*models.User, error)
	Revoke(userID uint) error
}

// ReferenceInput carries the writable fields of shared reference data.
type ReferenceInput struct {
	Name        string
	Description string
}

// CategoryServicer defines the contract for category reference data.
type CategoryServicer interface {
	CreateCategory(in ReferenceInput) (*models.Category, error)
	GetCategories(search string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(id uint) (*models.Category, error)
	UpdateCategory(id uint, in ReferenceInput) (*models.Category, error)
	DeleteCategory(id uint) error
}

// PaymentMethodServicer defines the contract for payment method reference data.
type PaymentMethodServicer interface {
	CreatePaymentMethod(in ReferenceInput, isDigital bool) (*models.PaymentMethod, error)
	GetPaymentMethods(search string, page pagination.PageRequest) (*pagination.PageResponse[models.PaymentMethod], error)
	GetPaymentMethodByID(id uint) (*models.PaymentMethod, error)
	UpdatePaymentMethod(id uint, in ReferenceInput, isDigital *bool) (*models.PaymentMethod, error)
	DeletePaymentMethod(id uint) error
}

// TagServicer defines the contract for tags.
type TagServicer interface {
	CreateTag(name string) (*models.Tag, error)
	GetTags(search string, page pagination.PageRequest) (*pagination.PageResponse[models.Tag], error)
	GetTagByID(id uint) (*models.Tag, error)
	UpdateTag(id uint, name string) (*models.Tag, error)
	DeleteTag(id uint) error
}

// ReceiptInput carries the writable fields of a receipt.
type ReceiptInput struct {
	CategoryID   *uint
	StoreName    string
	TotalAmount  decimal.Decimal
	Currency     string
	PurchaseDate time.Time
	Notes        string
}

// ReceiptFilter holds the optional, combinable list filters. All filters are
// ANDed together; Search alone fans out (OR) across store name, notes, and
// category name.
type ReceiptFilter struct {
	Search        string
	CategoryID    *uint
	PaymentMethod string
	Tags          []string
	DateFrom      *time.Time
	DateTo        *time.Time
	AmountMin     *decimal.Decimal
	AmountMax     *decimal.Decimal
}

// ItemInput carries the writable fields of a receipt line item.
type ItemInput struct {
	ItemName   string
	Quantity   uint
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// PaymentInput carries the writable fields of a receipt payment.
type PaymentInput struct {
	PaymentMethodID *uint
	AmountPaid      decimal.Decimal
	PaidAt          time.Time
}

// GroupTotal is one aggregation bucket in the analytics report.
type GroupTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// AnalyticsReport aggregates a user's spending over a trailing window.
type AnalyticsReport struct {
	Period struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Days      int    `json:"days"`
	} `json:"period"`
	Summary struct {
		TotalExpenses decimal.Decimal `json:"total_expenses"`
		TotalReceipts int             `json:"total_receipts"`
	} `json:"summary"`
	ByCategory      []GroupTotal `json:"by_category"`
	ByMonth         []GroupTotal `json:"by_month"`
	ByPaymentMethod []GroupTotal `json:"by_payment_method"`
}

// ReceiptServicer defines the contract for receipts and their child entities.
// Every operation is scoped to the acting user: a foreign receipt (or child of
// one) yields a forbidden error, a missing one yields not-found.
type ReceiptServicer interface {
	CreateReceipt(userID uint, in ReceiptInput) (*models.Receipt, error)
	GetReceipts(userID uint, page pagination.PageRequest, filter ReceiptFilter) (*pagination.PageResponse[models.Receipt], error)
	GetReceiptByID(userID, receiptID uint) (*models.Receipt, error)
	UpdateReceipt(userID, receiptID uint, in ReceiptInput) (*models.Receipt, error)
	DeleteReceipt(userID, receiptID uint) error
	Analytics(userID uint, days int) (*AnalyticsReport, error)

	CreateItem(userID, receiptID uint, in ItemInput) (*models.ReceiptItem, error)
	GetItems(userID uint, receiptID *uint, page pagination.PageRequest) (*pagination.PageResponse[models.ReceiptItem], error)
	GetItemByID(userID, itemID uint) (*models.ReceiptItem, error)
	UpdateItem(userID, itemID uint, in ItemInput) (*models.ReceiptItem, error)
	DeleteItem(userID, itemID uint) error

	CreatePayment(userID, receiptID uint, in PaymentInput) (*models.ReceiptPayment, error)
	GetPayments(userID uint, receiptID *uint, page pagination.PageRequest) (*pagination.PageResponse[models.ReceiptPayment], error)
	GetPaymentByID(userID, paymentID uint) (*models.ReceiptPayment, error)
	UpdatePayment(userID, paymentID uint, in PaymentInput) (*models.ReceiptPayment, error)
	DeletePayment(userID, paymentID uint) error

	AttachTag(userID, receiptID, tagID uint) (*models.ReceiptTag, error)
	GetReceiptTags(userID uint, receiptID *uint, page pagination.PageRequest) (*pagination.PageResponse[models.ReceiptTag], error)
	GetReceiptTagByID(userID, linkID uint) (*models.ReceiptTag, error)
	DetachTag(userID, linkID uint) error
}

// BudgetInput carries the writable fields of a budget.
type BudgetInput struct {
	CategoryID  uint
	AmountLimit decimal.Decimal
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID uint, in BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest, categoryID *uint) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, in BudgetInput) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
}

// NotificationServicer defines the contract for user notifications.
type NotificationServicer interface {
	Notify(userID uint, message string)
	GetUserNotifications(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error)
	MarkRead(userID, notificationID uint) error
	MarkAllRead(userID uint) (int64, error)
}
