package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/models"
	"kvitto/internal/pagination"
	"kvitto/internal/validation"
)

// receiptService handles receipts, their line items, payments, and tag links.
type receiptService struct {
	db *gorm.DB
}

// NewReceiptService creates a new ReceiptServicer.
func NewReceiptService(db *gorm.DB) ReceiptServicer {
	return &receiptService{db: db}
}

// ownedReceipt loads a receipt and checks ownership. A missing receipt is
// not-found; someone else's receipt is forbidden, never not-found.
func (s *receiptService) ownedReceipt(userID, receiptID uint) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := s.db.First(&receipt, receiptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReceiptNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if receipt.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &receipt, nil
}

// checkCategory verifies a referenced category exists.
func (s *receiptService) checkCategory(categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// CreateReceipt validates and stores a new receipt for the user.
func (s *receiptService) CreateReceipt(userID uint, in ReceiptInput) (*models.Receipt, error) {
	receipt := &models.Receipt{
		UserID:       userID,
		CategoryID:   in.CategoryID,
		StoreName:    in.StoreName,
		TotalAmount:  in.TotalAmount,
		Currency:     in.Currency,
		PurchaseDate: in.PurchaseDate,
		Notes:        in.Notes,
	}
	if receipt.Currency == "" {
		receipt.Currency = "KES"
	}

	if err := validation.Receipt(receipt); err != nil {
		return nil, err
	}
	if err := s.checkCategory(in.CategoryID); err != nil {
		return nil, err
	}

	if err := s.db.Create(receipt).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return receipt, nil
}

// filteredQuery builds the receipt list query for a user with all optional
// filters applied. Filters combine with AND; only the free-text search fans
// out with OR across store name, notes, and category name.
func (s *receiptService) filteredQuery(userID uint, f ReceiptFilter) *gorm.DB {
	q := s.db.Model(&models.Receipt{}).Where("receipts.user_id = ?", userID)

	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Joins("LEFT JOIN categories ON categories.id = receipts.category_id").
			Where("receipts.store_name LIKE ? OR receipts.notes LIKE ? OR categories.name LIKE ?", like, like, like)
	}
	if f.CategoryID != nil {
		q = q.Where("receipts.category_id = ?", *f.CategoryID)
	}
	if f.PaymentMethod != "" {
		q = q.Joins("JOIN receipt_payments ON receipt_payments.receipt_id = receipts.id").
			Joins("JOIN payment_methods ON payment_methods.id = receipt_payments.payment_method_id").
			Where("LOWER(payment_methods.name) LIKE ?", "%"+strings.ToLower(f.PaymentMethod)+"%")
	}
	if len(f.Tags) > 0 {
		q = q.Joins("JOIN receipt_tags ON receipt_tags.receipt_id = receipts.id").
			Joins("JOIN tags ON tags.id = receipt_tags.tag_id").
			Where("tags.name IN ?", f.Tags)
	}
	if f.DateFrom != nil {
		q = q.Where("receipts.purchase_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("receipts.purchase_date <= ?", *f.DateTo)
	}
	if f.AmountMin != nil {
		q = q.Where("receipts.total_amount >= ?", *f.AmountMin)
	}
	if f.AmountMax != nil {
		q = q.Where("receipts.total_amount <= ?", *f.AmountMax)
	}

	return q
}

// GetReceipts returns a paginated, filtered list of the user's receipts,
// newest purchase first. Joined filters can match a receipt through several
// rows; grouping by the receipt key keeps each receipt in the result once.
func (s *receiptService) GetReceipts(userID uint, page pagination.PageRequest, filter ReceiptFilter) (*pagination.PageResponse[models.Receipt], error) {
	page.Defaults()

	var totalItems int64
	if err := s.filteredQuery(userID, filter).Distinct("receipts.id").Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var receipts []models.Receipt
	err := s.filteredQuery(userID, filter).
		Group("receipts.id").
		Order("receipts.purchase_date DESC, receipts.id DESC").
		Scopes(pagination.Paginate(page)).
		Preload("Category").
		Preload("Items").
		Preload("Payments.PaymentMethod").
		Preload("Tags.Tag").
		Find(&receipts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(receipts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetReceiptByID returns one receipt with its children loaded.
func (s *receiptService) GetReceiptByID(userID, receiptID uint) (*models.Receipt, error) {
	if _, err := s.ownedReceipt(userID, receiptID); err != nil {
		return nil, err
	}

	var receipt models.Receipt
	err := s.db.
		Preload("Category").
		Preload("Items").
		Preload("Payments.PaymentMethod").
		Preload("Tags.Tag").
		First(&receipt, receiptID).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &receipt, nil
}

// UpdateReceipt replaces the writable fields of a receipt.
func (s *receiptService) UpdateReceipt(userID, receiptID uint, in ReceiptInput) (*models.Receipt, error) {
	receipt, err := s.ownedReceipt(userID, receiptID)
	if err != nil {
		return nil, err
	}

	receipt.CategoryID = in.CategoryID
	receipt.StoreName = in.StoreName
	receipt.TotalAmount = in.TotalAmount
	receipt.PurchaseDate = in.PurchaseDate
	receipt.Notes = in.Notes
	if in.Currency != "" {
		receipt.Currency = in.Currency
	}

	if err := validation.Receipt(receipt); err != nil {
		return nil, err
	}
	if err := s.checkCategory(in.CategoryID); err != nil {
		return nil, err
	}

	if err := s.db.Save(receipt).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return receipt, nil
}

// DeleteReceipt removes a receipt together with its items, payments, and tag
// links in one transaction.
func (s *receiptService) DeleteReceipt(userID, receiptID uint) error {
	receipt, err := s.ownedReceipt(userID, receiptID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.ReceiptItem{}, &models.ReceiptPayment{}, &models.ReceiptTag{}} {
			if err := tx.Where("receipt_id = ?", receiptID).Delete(child).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Delete(receipt).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// Analytics aggregates the user's spending over the trailing window of the
// given number of days (inclusive of today). Sums come out as zero when no
// rows match. Payment method totals are drawn from payment rows, so a receipt
// paid with two methods contributes to both buckets.
func (s *receiptService) Analytics(userID uint, days int) (*AnalyticsReport, error) {
	if days <= 0 {
		days = 30
	}

	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -days)
	endExclusive := end.AddDate(0, 0, 1)

	var receipts []models.Receipt
	err := s.db.Preload("Category").
		Where("user_id = ? AND purchase_date >= ? AND purchase_date < ?", userID, start, endExclusive).
		Find(&receipts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.ReceiptPayment
	err = s.db.Preload("PaymentMethod").
		Joins("JOIN receipts ON receipts.id = receipt_payments.receipt_id").
		Where("receipts.user_id = ? AND receipts.purchase_date >= ? AND receipts.purchase_date < ?", userID, start, endExclusive).
		Find(&payments).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	report := &AnalyticsReport{}
	report.Period.StartDate = start.Format("2006-01-02")
	report.Period.EndDate = end.Format("2006-01-02")
	report.Period.Days = days
	report.Summary.TotalExpenses = decimal.Zero
	report.Summary.TotalReceipts = len(receipts)

	byCategory := make(map[string]*GroupTotal)
	byMonth := make(map[string]*GroupTotal)
	for _, r := range receipts {
		report.Summary.TotalExpenses = report.Summary.TotalExpenses.Add(r.TotalAmount)

		catName := "Uncategorized"
		if r.Category != nil {
			catName = r.Category.Name
		}
		bump(byCategory, catName, r.TotalAmount)
		bump(byMonth, r.PurchaseDate.Format("2006-01"), r.TotalAmount)
	}

	byMethod := make(map[string]*GroupTotal)
	for _, p := range payments {
		methodName := "Unknown"
		if p.PaymentMethod != nil {
			methodName = p.PaymentMethod.Name
		}
		bump(byMethod, methodName, p.AmountPaid)
	}

	report.ByCategory = sortedByTotal(byCategory)
	report.ByMonth = sortedByName(byMonth)
	report.ByPaymentMethod = sortedByTotal(byMethod)
	return report, nil
}

func bump(groups map[string]*GroupTotal, key string, amount decimal.Decimal) {
	g, ok := groups[key]
	if !ok {
		g = &GroupTotal{Name: key, Total: decimal.Zero}
		groups[key] = g
	}
	g.Total = g.Total.Add(amount)
	g.Count++
}

// sortedByTotal flattens buckets ordered by descending total.
func sortedByTotal(groups map[string]*GroupTotal) []GroupTotal {
	out := flatten(groups)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// sortedByName flattens buckets ordered by ascending key (used for months).
func sortedByName(groups map[string]*GroupTotal) []GroupTotal {
	out := flatten(groups)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func flatten(groups map[string]*GroupTotal) []GroupTotal {
	out := make([]GroupTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	return out
}

// --- Line items ---

// ownedItem loads an item and checks that its parent receipt belongs to the user.
func (s *receiptService) ownedItem(userID, itemID uint) (*models.ReceiptItem, error) {
	var item models.ReceiptItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := s.ownedReceipt(userID, item.ReceiptID); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem adds a line item to one of the user's receipts. Adding an item
// to someone else's receipt is a permission error.
func (s *receiptService) CreateItem(userID, receiptID uint, in ItemInput) (*models.ReceiptItem, error) {
	if _, err := s.ownedReceipt(userID, receiptID); err != nil {
		return nil, err
	}

	item := &models.ReceiptItem{
		ReceiptID:  receiptID,
		ItemName:   in.ItemName,
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		TotalPrice: in.TotalPrice,
	}
	if err := validation.ReceiptItem(item); err != nil {
		return nil, err
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return item, nil
}

// GetItems lists line items across the user's receipts, optionally narrowed
// to one receipt.
func (s *receiptService) GetItems(userID uint, receiptID *uint, page pagination.PageRequest) (*pagination.PageResponse[models.ReceiptItem], error) {
	if receiptID != nil {
		if _, err := s.ownedReceipt(userID, *receiptID); err != nil {
			return nil, err
		}
	}
	page.Defaults()

	base := s.db.Model(&models.ReceiptItem{}).
		Joins("JOIN receipts ON receipts.id = receipt_items.receipt_id").
		Where("receipts.user_id = ?", userID)
	if receiptID != nil {
		base = base.Where("receipt_items.receipt_id = ?", *receiptID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var items []models.ReceiptItem
	if err := base.Order("receipt_items.item_name").Scopes(pagination.Paginate(page)).Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(items, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetItemByID returns one line item.
func (s *receiptService) GetItemByID(userID, itemID uint) (*models.ReceiptItem, error) {
	return s.ownedItem(userID, itemID)
}

// UpdateItem replaces the writable fields of a line item.
func (s *receiptService) UpdateItem(userID, itemID uint, in ItemInput) (*models.ReceiptItem, error) {
	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	item.ItemName = in.ItemName
	item.Quantity = in.Quantity
	item.UnitPrice = in.UnitPrice
	item.TotalPrice = in.TotalPrice
	if err := validation.ReceiptItem(item); err != nil {
		return nil, err
	}

	if err := s.db.Save(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return item, nil
}

// DeleteItem removes a line item.
func (s *receiptService) DeleteItem(userID, itemID uint) error {
	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(item).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// --- Payments ---

// checkPaymentMethod verifies a referenced payment method exists.
func (s *receiptService) checkPaymentMethod(methodID *uint) error {
	if methodID == nil {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.PaymentMethod{}).Where("id = ?", *methodID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrPaymentMethodNotFound
	}
	return nil
}

// ownedPayment loads a payment and checks that its receipt belongs to the user.
func (s *receiptService) ownedPayment(userID, paymentID uint) (*models.ReceiptPayment, error) {
	var payment models.ReceiptPayment
	if err := s.db.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := s.ownedReceipt(userID, payment.ReceiptID); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CreatePayment records a payment against one of the user's receipts.
func (s *receiptService) CreatePayment(userID, receiptID uint, in PaymentInput) (*models.ReceiptPayment, error) {
	if _, err := s.ownedReceipt(userID, receiptID); err != nil {
		return nil, err
	}

	payment := &models.ReceiptPayment{
		ReceiptID:       receiptID,
		PaymentMethodID: in.PaymentMethodID,
		AmountPaid:      in.AmountPaid,
		PaidAt:          in.PaidAt,
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now()
	}
	if err := validation.ReceiptPayment(payment); err != nil {
		return nil, err
	}
	if err := s.checkPaymentMethod(in.PaymentMethodID); err != nil {
		return nil, err
	}

	if err := s.db.Create(payment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payment, nil
}

// GetPayments lists payments across the user's receipts, newest first.
func (s *receiptService) GetPayments(userID uint, receiptID *uint, page pagination.PageRequest) (*pagination.PageResponse[models.ReceiptPayment], error) {
	if receiptID != nil {
		if _, err := s.ownedReceipt(userID, *receiptID); err != nil {
			return nil, err
		}
	}
	page.Defaults()

	base := s.db.Model(&models.ReceiptPayment{}).
		Joins("JOIN receipts ON receipts.id = receipt_payments.receipt_id").
		Where("receipts.user_id = ?", userID)
	if receiptID != nil {
		base = base.Where("receipt_payments.receipt_id = ?", *receiptID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.ReceiptPayment
	err := base.Order("receipt_payments.paid_at DESC").
		Scopes(pagination.Paginate(page)).
		Preload("PaymentMethod").
		Find(&payments).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPaymentByID returns one payment.
func (s *receiptService) GetPaymentByID(userID, paymentID uint) (*models.ReceiptPayment, error) {
	return s.ownedPayment(userID, paymentID)
}

// UpdatePayment replaces the writable fields of a payment.
func (s *receiptService) UpdatePayment(userID, paymentID uint, in PaymentInput) (*models.ReceiptPayment, error) {
	payment, err := s.ownedPayment(userID, paymentID)
	if err != nil {
		return nil, err
	}

	payment.PaymentMethodID = in.PaymentMethodID
	payment.AmountPaid = in.AmountPaid
	if !in.PaidAt.IsZero() {
		payment.PaidAt = in.PaidAt
	}
	if err := validation.ReceiptPayment(payment); err != nil {
		return nil, err
	}
	if err := s.checkPaymentMethod(in.PaymentMethodID); err != nil {
		return nil, err
	}

	if err := s.db.Save(payment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payment, nil
}

// DeletePayment removes a payment.
func (s *receiptService) DeletePayment(userID, paymentID uint) error {
	payment, err := s.ownedPayment(userID, paymentID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(payment).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// --- Tag links ---

// AttachTag links a tag to one of the user's receipts. Each (receipt, tag)
// pair may exist only once.
func (s *receiptService) AttachTag(userID, receiptID, tagID uint) (*models.ReceiptTag, error) {
	if _, err := s.ownedReceipt(userID, receiptID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Tag{}).Where("id = ?", tagID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrTagNotFound
	}

	if err := s.db.Model(&models.ReceiptTag{}).Where("receipt_id = ? AND tag_id = ?", receiptID, tagID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateReceiptTag
	}

	link := &models.ReceiptTag{ReceiptID: receiptID, TagID: tagID}
	if err := s.db.Create(link).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Preload("Tag").First(link, link.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return link, nil
}

// GetReceiptTags lists tag links across the user's receipts.
func (s *receiptService) GetReceiptTags(userID uint, receiptID *uint, page pagination.PageRequest) (*pagination.PageResponse[models.ReceiptTag], error) {
	if receiptID != nil {
		if _, err := s.ownedReceipt(userID, *receiptID); err != nil {
			return nil, err
		}
	}
	page.Defaults()

	base := s.db.Model(&models.ReceiptTag{}).
		Joins("JOIN receipts ON receipts.id = receipt_tags.receipt_id").
		Where("receipts.user_id = ?", userID)
	if receiptID != nil {
		base = base.Where("receipt_tags.receipt_id = ?", *receiptID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var links []models.ReceiptTag
	err := base.Order("receipt_tags.id").
		Scopes(pagination.Paginate(page)).
		Preload("Tag").
		Find(&links).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(links, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetReceiptTagByID returns one tag link.
func (s *receiptService) GetReceiptTagByID(userID, linkID uint) (*models.ReceiptTag, error) {
	var link models.ReceiptTag
	if err := s.db.Preload("Tag").First(&link, linkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReceiptTagNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := s.ownedReceipt(userID, link.ReceiptID); err != nil {
		return nil, err
	}
	return &link, nil
}

// DetachTag removes a tag link.
func (s *receiptService) DetachTag(userID, linkID uint) error {
	link, err := s.GetReceiptTagByID(userID, linkID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(link).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
