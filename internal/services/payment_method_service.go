package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/models"
	"kvitto/internal/pagination"
)

// paymentMethodService handles payment method reference data.
type paymentMethodService struct {
	db *gorm.DB
}

// NewPaymentMethodService creates a new PaymentMethodServicer.
func NewPaymentMethodService(db *gorm.DB) PaymentMethodServicer {
	return &paymentMethodService{db: db}
}

// CreatePaymentMethod creates a new payment method with a unique name.
func (s *paymentMethodService) CreatePaymentMethod(in ReferenceInput, isDigital bool) (*models.PaymentMethod, error) {
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment method name is required")
	}

	var count int64
	if err := s.db.Model(&models.PaymentMethod{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateMethod
	}

	method := &models.PaymentMethod{Name: in.Name, Description: in.Description, IsDigital: isDigital}
	if err := s.db.Create(method).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return method, nil
}

// GetPaymentMethods retrieves a paginated list of payment methods ordered by name.
func (s *paymentMethodService) GetPaymentMethods(search string, page pagination.PageRequest) (*pagination.PageResponse[models.PaymentMethod], error) {
	page.Defaults()

	base := s.db.Model(&models.PaymentMethod{})
	if search != "" {
		like := "%" + search + "%"
		base = base.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var methods []models.PaymentMethod
	if err := base.Order("name").Scopes(pagination.Paginate(page)).Find(&methods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(methods, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPaymentMethodByID retrieves a payment method by ID.
func (s *paymentMethodService) GetPaymentMethodByID(id uint) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := s.db.First(&method, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentMethodNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &method, nil
}

// UpdatePaymentMethod updates an existing payment method.
func (s *paymentMethodService) UpdatePaymentMethod(id uint, in ReferenceInput, isDigital *bool) (*models.PaymentMethod, error) {
	method, err := s.GetPaymentMethodByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Name != "" && in.Name != method.Name {
		var count int64
		if err := s.db.Model(&models.PaymentMethod{}).Where("name = ? AND id <> ?", in.Name, id).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateMethod
		}
		updates["name"] = in.Name
	}
	if in.Description != "" {
		updates["description"] = in.Description
	}
	if isDigital != nil {
		updates["is_digital"] = *isDigital
	}

	if len(updates) > 0 {
		if err := s.db.Model(method).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return method, nil
}

// DeletePaymentMethod deletes a payment method. Payment rows that referenced
// it keep their history with the method reference cleared.
func (s *paymentMethodService) DeletePaymentMethod(id uint) error {
	method, err := s.GetPaymentMethodByID(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ReceiptPayment{}).Where("payment_method_id = ?", id).Update("payment_method_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(method).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
