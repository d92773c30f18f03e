package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/pagination"
	"kvitto/internal/services"
)

// BudgetHandler handles budget requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetRequest represents the request payload for creating or updating a budget.
type BudgetRequest struct {
	CategoryID  uint            `json:"category_id" binding:"required"`
	AmountLimit decimal.Decimal `json:"amount_limit"`
	PeriodStart string          `json:"period_start" binding:"required"`
	PeriodEnd   string          `json:"period_end" binding:"required"`
}

func (r BudgetRequest) toInput() (services.BudgetInput, error) {
	start, err := parseDate(r.PeriodStart)
	if err != nil {
		return services.BudgetInput{}, err
	}
	end, err := parseDate(r.PeriodEnd)
	if err != nil {
		return services.BudgetInput{}, err
	}
	return services.BudgetInput{
		CategoryID:  r.CategoryID,
		AmountLimit: r.AmountLimit,
		PeriodStart: start,
		PeriodEnd:   end,
	}, nil
}

// budgetListQuery narrows the list to one category.
type budgetListQuery struct {
	CategoryID *uint `form:"category"`
	pagination.PageRequest
}

// Create adds a new budget for the authenticated user.
// @Summary     Create a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       request body BudgetRequest true "Budget details"
// @Success     201 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Validation failed"
// @Failure     409 {object} ErrorResponse "Duplicate category and period"
// @Router      /budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// List returns the user's budgets, most recent period first.
// @Summary     List budgets
// @Tags        budgets
// @Produce     json
// @Security    TokenAuth
// @Param       category query int false "Category ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{}
// @Router      /budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q budgetListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.GetUserBudgets(userID, q.PageRequest, q.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns one budget.
// @Summary     Get a budget
// @Tags        budgets
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} map[string]interface{}
// @Failure     403 {object} ErrorResponse "Someone else's budget"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// Update replaces the writable fields of a budget.
// @Summary     Update a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Budget ID"
// @Param       request body BudgetRequest true "Budget details"
// @Success     200 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Validation failed"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// Delete removes a budget.
// @Summary     Delete a budget
// @Tags        budgets
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} map[string]string
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted"})
}
