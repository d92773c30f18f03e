package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/pagination"
	"kvitto/internal/services"
)

// ReceiptItemHandler handles line item requests.
type ReceiptItemHandler struct {
	receiptService services.ReceiptServicer
}

// NewReceiptItemHandler creates a new ReceiptItemHandler.
func NewReceiptItemHandler(receiptService services.ReceiptServicer) *ReceiptItemHandler {
	return &ReceiptItemHandler{receiptService: receiptService}
}

// ItemRequest represents the request payload for a line item. The price rules
// (positive values, total = quantity x unit price) are checked by the service.
type ItemRequest struct {
	ItemName   string          `json:"item_name" binding:"required,min=1,max=255"`
	Quantity   uint            `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (r ItemRequest) toInput() services.ItemInput {
	return services.ItemInput{
		ItemName:   r.ItemName,
		Quantity:   r.Quantity,
		UnitPrice:  r.UnitPrice,
		TotalPrice: r.TotalPrice,
	}
}

// itemListQuery narrows the list to one receipt.
type itemListQuery struct {
	ReceiptID *uint `form:"receipt"`
	pagination.PageRequest
}

// Create adds a line item to one of the caller's receipts.
// @Summary     Add a line item
// @Tags        receipt-items
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Receipt ID"
// @Param       request body ItemRequest true "Item details"
// @Success     201 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Validation failed"
// @Failure     403 {object} ErrorResponse "Someone else's receipt"
// @Router      /receipts/{id}/items [post]
func (h *ReceiptItemHandler) Create(c *gin.Context) {
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

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.receiptService.CreateItem(userID, receiptID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// List returns line items across the caller's receipts.
// @Summary     List line items
// @Tags        receipt-items
// @Produce     json
// @Security    TokenAuth
// @Param       receipt query int false "Narrow to one receipt"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{}
// @Router      /receipt-items [get]
func (h *ReceiptItemHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q itemListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.receiptService.GetItems(userID, q.ReceiptID, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns one line item.
// @Summary     Get a line item
// @Tags        receipt-items
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Item ID"
// @Success     200 {object} map[string]interface{}
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /receipt-items/{id} [get]
func (h *ReceiptItemHandler) Get(c *gin.Context) {
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

	item, err := h.receiptService.GetItemByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// Update replaces the writable fields of a line item.
// @Summary     Update a line item
// @Tags        receipt-items
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Item ID"
// @Param       request body ItemRequest true "Item details"
// @Success     200 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Validation failed"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /receipt-items/{id} [put]
func (h *ReceiptItemHandler) Update(c *gin.Context) {
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

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.receiptService.UpdateItem(userID, id, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// Delete removes a line item.
// @Summary     Delete a line item
// @Tags        receipt-items
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Item ID"
// @Success     200 {object} map[string]string
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /receipt-items/{id} [delete]
func (h *ReceiptItemHandler) Delete(c *gin.Context) {
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

	if err := h.receiptService.DeleteItem(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}
