package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/pagination"
	"kvitto/internal/services"
)

// ReceiptHandler handles receipt requests.
type ReceiptHandler struct {
	receiptService services.ReceiptServicer
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptService services.ReceiptServicer) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// ReceiptRequest represents the request payload for creating or updating a
// receipt. Amount and date rules are checked by the service so their messages
// come back per field.
type ReceiptRequest struct {
	CategoryID   *uint           `json:"category_id"`
	StoreName    string          `json:"store_name" binding:"required,min=1,max=255"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Currency     string          `json:"currency" binding:"omitempty,currency"`
	PurchaseDate string          `json:"purchase_date" binding:"required"`
	Notes        string          `json:"notes" binding:"max=2000"`
}

// ReceiptListQuery holds the combinable receipt list filters.
type ReceiptListQuery struct {
	Search        string `form:"search"`
	CategoryID    *uint  `form:"category"`
	PaymentMethod string `form:"payment_method"`
	Tags          string `form:"tags"`
	DateFrom      string `form:"date_from"`
	DateTo        string `form:"date_to"`
	AmountMin     string `form:"min_amount"`
	AmountMax     string `form:"max_amount"`
	pagination.PageRequest
}

// toInput converts the request into a service input.
func (r ReceiptRequest) toInput() (services.ReceiptInput, error) {
	purchaseDate, err := parseDate(r.PurchaseDate)
	if err != nil {
		return services.ReceiptInput{}, err
	}
	return services.ReceiptInput{
		CategoryID:   r.CategoryID,
		StoreName:    r.StoreName,
		TotalAmount:  r.TotalAmount,
		Currency:     strings.ToUpper(r.Currency),
		PurchaseDate: purchaseDate,
		Notes:        r.Notes,
	}, nil
}

// toFilter converts the query into a service filter.
func (q ReceiptListQuery) toFilter() (services.ReceiptFilter, error) {
	filter := services.ReceiptFilter{
		Search:        q.Search,
		CategoryID:    q.CategoryID,
		PaymentMethod: q.PaymentMethod,
	}

	if q.Tags != "" {
		for _, tag := range strings.Split(q.Tags, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				filter.Tags = append(filter.Tags, trimmed)
			}
		}
	}
	if q.DateFrom != "" {
		from, err := parseDate(q.DateFrom)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &from
	}
	if q.DateTo != "" {
		to, err := parseDate(q.DateTo)
		if err != nil {
			return filter, err
		}
		filter.DateTo = &to
	}
	if q.AmountMin != "" {
		min, err := decimal.NewFromString(q.AmountMin)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid min_amount")
		}
		filter.AmountMin = &min
	}
	if q.AmountMax != "" {
		max, err := decimal.NewFromString(q.AmountMax)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid max_amount")
		}
		filter.AmountMax = &max
	}

	return filter, nil
}

// Create adds a new receipt for the authenticated user.
// @Summary     Create a receipt
// @Tags        receipts
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       request body ReceiptRequest true "Receipt details"
// @Success     201 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Validation failed"
// @Router      /receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	receipt, err := h.receiptService.CreateReceipt(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"receipt": receipt})
}

// List returns the user's receipts with optional combinable filters.
// @Summary     List receipts
// @Description Filters combine with AND; search matches store name, notes, or category name; tags matches any of a comma-separated list
// @Tags        receipts
// @Produce     json
// @Security    TokenAuth
// @Param       search query string false "Free-text search"
// @Param       category query int false "Category ID"
// @Param       payment_method query string false "Payment method name substring"
// @Param       tags query string false "Comma-separated tag names"
// @Param       date_from query string false "Earliest purchase date (YYYY-MM-DD)"
// @Param       date_to query string false "Latest purchase date (YYYY-MM-DD)"
// @Param       min_amount query number false "Minimum total amount"
// @Param       max_amount query number false "Maximum total amount"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{}
// @Router      /receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ReceiptListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := q.toFilter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.receiptService.GetReceipts(userID, q.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns one receipt with its items, payments, and tags.
// @Summary     Get a receipt
// @Tags        receipts
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Receipt ID"
// @Success     200 {object} map[string]interface{}
// @Failure     403 {object} ErrorResponse "Someone else's receipt"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /receipts/{id} [get]
func (h *ReceiptHandler) Get(c *gin.Context) {
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

	receipt, err := h.receiptService.GetReceiptByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}

// Update replaces the writable fields of a receipt.
// @Summary     Update a receipt
// @Tags        receipts
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Receipt ID"
// @Param       request body ReceiptRequest true "Receipt details"
// @Success     200 {object} map[string]interface{}
// @Failure     403 {object} ErrorResponse "Someone else's receipt"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /receipts/{id} [put]
func (h *ReceiptHandler) Update(c *gin.Context) {
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

	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	receipt, err := h.receiptService.UpdateReceipt(userID, id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}

// Delete removes a receipt and everything attached to it.
// @Summary     Delete a receipt
// @Tags        receipts
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Receipt ID"
// @Success     200 {object} map[string]string
// @Failure     403 {object} ErrorResponse "Someone else's receipt"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /receipts/{id} [delete]
func (h *ReceiptHandler) Delete(c *gin.Context) {
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

	if err := h.receiptService.DeleteReceipt(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Receipt deleted"})
}

// Analytics returns spending aggregates over a trailing window.
// @Summary     Spending analytics
// @Description Aggregate totals by category, month, and payment method over the last N days
// @Tags        receipts
// @Produce     json
// @Security    TokenAuth
// @Param       days query int false "Window length in days (default 30)"
// @Success     200 {object} services.AnalyticsReport
// @Router      /receipts/analytics [get]
func (h *ReceiptHandler) Analytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q struct {
		Days int `form:"days" binding:"omitempty,min=1,max=3650"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	report, err := h.receiptService.Analytics(userID, q.Days)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
