package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/services"
)

// UserHandler handles profile requests.
type UserHandler struct {
	userService services.UserServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest represents the request payload for a partial profile update.
type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=1,max=150"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

// Profile returns the authenticated user's profile.
// @Summary     Get profile
// @Tags        users
// @Produce     json
// @Security    TokenAuth
// @Success     200 {object} UserResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /users/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsActive: user.IsActive,
	}})
}

// UpdateProfile applies a partial update of username and email.
// @Summary     Update profile
// @Description Update username and/or email; omitted fields are unchanged
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       request body UpdateProfileRequest true "Fields to update"
// @Success     200 {object} UserResponse
// @Failure     409 {object} ErrorResponse "Username or email taken"
// @Router      /users/update_profile [put]
// @Router      /users/update_profile [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(userID, req.Username, req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsActive: user.IsActive,
	}})
}

// Deactivate disables the account and revokes its API token.
// @Summary     Deactivate account
// @Description Mark the account inactive and revoke the API token
// @Tags        users
// @Produce     json
// @Security    TokenAuth
// @Success     200 {object} map[string]string "Deactivated"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /users/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.Deactivate(userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated"})
}
