package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/models"
	"kvitto/internal/pagination"
	"kvitto/internal/validation"
)

// budgetService handles per-category spending limits.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// ownedBudget loads a budget and checks ownership. A missing budget is
// not-found; someone else's budget is forbidden.
func (s *budgetService) ownedBudget(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.First(&budget, budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if budget.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &budget, nil
}

// checkDuplicateWindow rejects a second budget for the same user, category,
// and exact period. excludeID skips the budget being updated.
func (s *budgetService) checkDuplicateWindow(b *models.Budget, excludeID uint) error {
	q := s.db.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND period_start = ? AND period_end = ?",
			b.UserID, b.CategoryID, b.PeriodStart, b.PeriodEnd)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateBudget
	}
	return nil
}

func (s *budgetService) checkCategory(categoryID uint) error {
	var count int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// CreateBudget validates and stores a new budget for the user.
func (s *budgetService) CreateBudget(userID uint, in BudgetInput) (*models.Budget, error) {
	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		AmountLimit: in.AmountLimit,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
	}

	if err := validation.Budget(budget, true); err != nil {
		return nil, err
	}
	if err := s.checkCategory(in.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkDuplicateWindow(budget, 0); err != nil {
		return nil, err
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetUserBudgets returns a paginated list of the user's budgets, most recent
// period first, optionally narrowed to one category.
func (s *budgetService) GetUserBudgets(userID uint, page pagination.PageRequest, categoryID *uint) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if categoryID != nil {
		base = base.Where("category_id = ?", *categoryID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	err := base.Order("period_start DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Preload("Category").
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns one budget with its category loaded.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	if _, err := s.ownedBudget(userID, budgetID); err != nil {
		return nil, err
	}

	var budget models.Budget
	if err := s.db.Preload("Category").First(&budget, budgetID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget replaces the writable fields of a budget. The past-start rule
// applies only at creation, so an existing budget whose period already began
// can still be edited.
func (s *budgetService) UpdateBudget(userID, budgetID uint, in BudgetInput) (*models.Budget, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	budget.CategoryID = in.CategoryID
	budget.AmountLimit = in.AmountLimit
	budget.PeriodStart = in.PeriodStart
	budget.PeriodEnd = in.PeriodEnd

	if err := validation.Budget(budget, false); err != nil {
		return nil, err
	}
	if err := s.checkCategory(in.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkDuplicateWindow(budget, budgetID); err != nil {
		return nil, err
	}

	if err := s.db.Save(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// DeleteBudget removes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
