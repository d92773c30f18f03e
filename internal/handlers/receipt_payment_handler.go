package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/pagination"
	"kvitto/internal/services"
)

// ReceiptPaymentHandler handles split payment requests.
type ReceiptPaymentHandler struct {
	receiptService services.ReceiptServicer
}

// NewReceiptPaymentHandler creates a new ReceiptPaymentHandler.
func NewReceiptPaymentHandler(receiptService services.ReceiptServicer) *ReceiptPaymentHandler {
	return &ReceiptPaymentHandler{receiptService: receiptService}
}

// PaymentRequest represents the request payload for a payment. PaidAt takes
// an RFC 3339 timestamp or a bare YYYY-MM-DD date (midnight UTC); when
// omitted the payment is stamped with the current time.
type PaymentRequest struct {
	PaymentMethodID *uint           `json:"payment_method_id"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	PaidAt          string          `json:"paid_at"`
}

func (r PaymentRequest) toInput() (services.PaymentInput, error) {
	in := services.PaymentInput{
		PaymentMethodID: r.PaymentMethodID,
		AmountPaid:      r.AmountPaid,
	}
	if r.PaidAt != "" {
		paidAt, err := time.Parse(time.RFC3339, r.PaidAt)
		if err != nil {
			paidAt, err = time.Parse("2006-01-02", r.PaidAt)
		}
		if err != nil {
			return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid paid_at, expected RFC 3339 or YYYY-MM-DD")
		}
		in.PaidAt = paidAt
	}
	return in, nil
}

// paymentListQuery narrows the list to one receipt.
type paymentListQuery struct {
	ReceiptID *uint `form:"receipt"`
	pagination.PageRequest
}

// Create records a payment against one of the caller's receipts.
// @Summary     Record a payment
// @Tags        receipt-payments
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Receipt ID"
// @Param       request body PaymentRequest true "Payment details"
// @Success     201 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Validation failed"
// @Failure     403 {object} ErrorResponse "Someone else's receipt"
// @Router      /receipts/{id}/payments [post]
func (h *ReceiptPaymentHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	receiptID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.receiptService.CreatePayment(userID, receiptID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// List returns payments across the caller's receipts, newest first.
// @Summary     List payments
// @Tags        receipt-payments
// @Produce     json
// @Security    TokenAuth
// @Param       receipt query int false "Narrow to one receipt"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{}
// @Router      /receipt-payments [get]
func (h *ReceiptPaymentHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q paymentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.receiptService.GetPayments(userID, q.ReceiptID, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns one payment.
// @Summary     Get a payment
// @Tags        receipt-payments
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Payment ID"
// @Success     200 {object} map[string]interface{}
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /receipt-payments/{id} [get]
func (h *ReceiptPaymentHandler) Get(c *gin.Context) {
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

	payment, err := h.receiptService.GetPaymentByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// Update replaces the writable fields of a payment.
// @Summary     Update a payment
// @Tags        receipt-payments
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Payment ID"
// @Param       request body PaymentRequest true "Payment details"
// @Success     200 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Validation failed"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /receipt-payments/{id} [put]
func (h *ReceiptPaymentHandler) Update(c *gin.Context) {
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

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.receiptService.UpdatePayment(userID, id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// Delete removes a payment.
// @Summary     Delete a payment
// @Tags        receipt-payments
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Payment ID"
// @Success     200 {object} map[string]string
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /receipt-payments/{id} [delete]
func (h *ReceiptPaymentHandler) Delete(c *gin.Context) {
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

	if err := h.receiptService.DeletePayment(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted"})
}
