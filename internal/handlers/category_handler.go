package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/pagination"
	"kvitto/internal/services"
)

// CategoryHandler handles category reference data requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest represents the request payload for creating or updating a category.
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// ListQuery holds the shared list query parameters for reference data.
type ListQuery struct {
	Search string `form:"search"`
	pagination.PageRequest
}

// Create adds a new category.
// @Summary     Create a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       request body CategoryRequest true "Category details"
// @Success     201 {object} map[string]interface{}
// @Failure     409 {object} ErrorResponse "Name taken"
// @Router      /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(services.ReferenceInput{Name: req.Name, Description: req.Description})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// List returns categories, optionally filtered by a search term.
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Security    TokenAuth
// @Param       search query string false "Match name or description"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{}
// @Router      /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.categoryService.GetCategories(q.Search, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns one category.
// @Summary     Get a category
// @Tags        categories
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} map[string]interface{}
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// Update modifies a category.
// @Summary     Update a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Category ID"
// @Param       request body CategoryRequest true "Category details"
// @Success     200 {object} map[string]interface{}
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Name taken"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(id, services.ReferenceInput{Name: req.Name, Description: req.Description})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// Delete removes a category. Receipts keep their rows with the category
// cleared; budgets for the category are removed.
// @Summary     Delete a category
// @Tags        categories
// @Produce     json
// @Security    TokenAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} map[string]string
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
