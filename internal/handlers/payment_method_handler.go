package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/services"
)

// PaymentMethodHandler handles payment method reference data requests.
type PaymentMethodHandler struct {
	methodService services.PaymentMethodServicer
}

// NewPaymentMethodHandler creates a new PaymentMethodHandler.
func NewPaymentMethodHandler(methodService services.PaymentMethodServicer) *PaymentMethodHandler {
	return &PaymentMethodHandler{methodService: methodService}
}

// CreatePaymentMethodRequest represents the request payload for creating a payment method.
type CreatePaymentMethodRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	IsDigital   bool   `json:"is_digital"`
}

// UpdatePaymentMethodRequest represents the request payload for updating a payment method.
type UpdatePaymentMethodRequest struct {
	Name        string `json:"name" binding:"omitempty,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	IsDigital   *bool  `json:"is_digital"`
}

// Create adds a new payment method.
// @Summary     Create a payment method
// @Tags        payment-methods
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       request body CreatePaymentMethodRequest true "Payment method details"
// @Success     201 {object} map[string]interface{}
// @Failure     409 {object} ErrorResponse "Name taken"
// @Router      /payment-methods [post]
func (h *PaymentMethodHandler) Create(c *gin.Context) {
	var req CreatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	method, err := h.methodService.CreatePaymentMethod(
		services.ReferenceInput{Name: req.Name, Description: req.Description}, req.IsDigital)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment_method": method})
}

// List returns payment methods, optionally filtered by a search term.
// @Summary     List payment methods
// @Tags        payment-methods
// @Produce     json
// @Security    TokenAuth
// @Param       search query string false "Match name or description"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{}
// @Router      /payment-methods [get]
func (h *PaymentMethodHandler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.methodService.GetPaymentMethods(q.Search, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns one payment method.
// @Summary     Get a payment method
// @Tags        payment-methods
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Payment method ID"
// @Success     200 {object} map[string]interface{}
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /payment-methods/{id} [get]
func (h *PaymentMethodHandler) Get(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	method, err := h.methodService.GetPaymentMethodByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_method": method})
}

// Update modifies a payment method.
// @Summary     Update a payment method
// @Tags        payment-methods
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Payment method ID"
// @Param       request body UpdatePaymentMethodRequest true "Payment method details"
// @Success     200 {object} map[string]interface{}
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /payment-methods/{id} [put]
func (h *PaymentMethodHandler) Update(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	method, err := h.methodService.UpdatePaymentMethod(id,
		services.ReferenceInput{Name: req.Name, Description: req.Description}, req.IsDigital)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_method": method})
}

// Delete removes a payment method. Payment history keeps its rows with the
// method reference cleared.
// @Summary     Delete a payment method
// @Tags        payment-methods
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Payment method ID"
// @Success     200 {object} map[string]string
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /payment-methods/{id} [delete]
func (h *PaymentMethodHandler) Delete(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.methodService.DeletePaymentMethod(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted"})
}
