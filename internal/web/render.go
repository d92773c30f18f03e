package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/logger"
	"kvitto/internal/middleware"
	"kvitto/internal/models"
	"kvitto/internal/pagination"
)

// render executes a page template with the shared layout data filled in.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if username, ok := c.Get(middleware.UsernameKey); ok {
		data["Username"] = username
	}
	if flash := middleware.TakeFlash(c); flash != "" {
		data["Flash"] = flash
	}
	c.HTML(status, name, data)
}

// currentUserID returns the user set by the session middleware.
func currentUserID(c *gin.Context) uint {
	v, _ := c.Get(middleware.UserIDKey)
	id, _ := v.(uint)
	return id
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// asAppError extracts a structured application error.
func asAppError(err error) (*apperrors.AppError, bool) {
	var appErr *apperrors.AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// asValidationError extracts field-scoped validation messages.
func asValidationError(err error) (*apperrors.ValidationError, bool) {
	var verr *apperrors.ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}

// redirectWithMessage flashes a one-shot message and sends the browser on.
func redirectWithMessage(c *gin.Context, location, message string) {
	if message != "" {
		middleware.SetFlash(c, message)
	}
	c.Redirect(http.StatusSeeOther, location)
}

// errorMessage turns a service error into something safe to show on a page.
func errorMessage(err error) string {
	if appErr, ok := asAppError(err); ok {
		return appErr.Message
	}
	logger.Get().Errorw("unexpected error on web page", "error", err)
	return "Something went wrong. Please try again."
}

// loadCategories fetches the categories used by form selects and filters.
func (h *Handler) loadCategories() []models.Category {
	result, err := h.categories.GetCategories("", pagination.PageRequest{Page: 1, PageSize: 100})
	if err != nil {
		logger.Get().Errorw("failed to load categories for form", "error", err)
		return nil
	}
	return result.Data
}

// bindPage reads the page query parameters, falling back to the first page.
func bindPage(c *gin.Context) pagination.PageRequest {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		return pagination.PageRequest{}
	}
	return page
}
