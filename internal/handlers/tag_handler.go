package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/services"
)

// TagHandler handles tag requests.
type TagHandler struct {
	tagService services.TagServicer
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService services.TagServicer) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// TagRequest represents the request payload for creating or renaming a tag.
type TagRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

// Create adds a new tag.
// @Summary     Create a tag
// @Tags        tags
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       request body TagRequest true "Tag details"
// @Success     201 {object} map[string]interface{}
// @Failure     409 {object} ErrorResponse "Name taken"
// @Router      /tags [post]
func (h *TagHandler) Create(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tag, err := h.tagService.CreateTag(req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// List returns tags ordered by name.
// @Summary     List tags
// @Tags        tags
// @Produce     json
// @Security    TokenAuth
// @Param       search query string false "Match name"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{}
// @Router      /tags [get]
func (h *TagHandler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.tagService.GetTags(q.Search, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns one tag.
// @Summary     Get a tag
// @Tags        tags
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Tag ID"
// @Success     200 {object} map[string]interface{}
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /tags/{id} [get]
func (h *TagHandler) Get(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tag, err := h.tagService.GetTagByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// Update renames a tag.
// @Summary     Rename a tag
// @Tags        tags
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Tag ID"
// @Param       request body TagRequest true "Tag details"
// @Success     200 {object} map[string]interface{}
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Name taken"
// @Router      /tags/{id} [put]
func (h *TagHandler) Update(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tag, err := h.tagService.UpdateTag(id, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// Delete removes a tag and detaches it from all receipts.
// @Summary     Delete a tag
// @Tags        tags
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Tag ID"
// @Success     200 {object} map[string]string
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /tags/{id} [delete]
func (h *TagHandler) Delete(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.tagService.DeleteTag(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}
