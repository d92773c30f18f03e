package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/pagination"
	"kvitto/internal/services"
)

// ReceiptTagHandler handles receipt tag link requests.
type ReceiptTagHandler struct {
	receiptService services.ReceiptServicer
}

// NewReceiptTagHandler creates a new ReceiptTagHandler.
func NewReceiptTagHandler(receiptService services.ReceiptServicer) *ReceiptTagHandler {
	return &ReceiptTagHandler{receiptService: receiptService}
}

// AttachTagRequest represents the request payload for attaching a tag.
type AttachTagRequest struct {
	TagID uint `json:"tag_id" binding:"required"`
}

// tagLinkListQuery narrows the list to one receipt.
type tagLinkListQuery struct {
	ReceiptID *uint `form:"receipt"`
	pagination.PageRequest
}

// Attach links a tag to one of the caller's receipts.
// @Summary     Attach a tag
// @Tags        receipt-tags
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Receipt ID"
// @Param       request body AttachTagRequest true "Tag to attach"
// @Success     201 {object} map[string]interface{}
// @Failure     403 {object} ErrorResponse "Someone else's receipt"
// @Failure     409 {object} ErrorResponse "Tag already attached"
// @Router      /receipts/{id}/tags [post]
func (h *ReceiptTagHandler) Attach(c *gin.Context) {
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

	var req AttachTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	link, err := h.receiptService.AttachTag(userID, receiptID, req.TagID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"receipt_tag": link})
}

// List returns tag links across the caller's receipts.
// @Summary     List tag links
// @Tags        receipt-tags
// @Produce     json
// @Security    TokenAuth
// @Param       receipt query int false "Narrow to one receipt"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{}
// @Router      /receipt-tags [get]
func (h *ReceiptTagHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q tagLinkListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.receiptService.GetReceiptTags(userID, q.ReceiptID, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns one tag link.
// @Summary     Get a tag link
// @Tags        receipt-tags
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Link ID"
// @Success     200 {object} map[string]interface{}
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /receipt-tags/{id} [get]
func (h *ReceiptTagHandler) Get(c *gin.Context) {
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

	link, err := h.receiptService.GetReceiptTagByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt_tag": link})
}

// Detach removes a tag link.
// @Summary     Detach a tag
// @Tags        receipt-tags
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Link ID"
// @Success     200 {object} map[string]string
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /receipt-tags/{id} [delete]
func (h *ReceiptTagHandler) Detach(c *gin.Context) {
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

	if err := h.receiptService.DetachTag(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag detached"})
}
