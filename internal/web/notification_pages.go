package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"kvitto/internal/models"
	"kvitto/internal/pagination"
)

// NotificationList shows the user's notifications, newest first.
func (h *Handler) NotificationList(c *gin.Context) {
	userID := currentUserID(c)

	result, err := h.notifications.GetUserNotifications(userID, bindPage(c))
	if err != nil {
		h.render(c, http.StatusOK, "notification_list.html", gin.H{
			"Title":         "Notifications",
			"Error":         errorMessage(err),
			"Notifications": &pagination.PageResponse[models.Notification]{},
		})
		return
	}

	h.render(c, http.StatusOK, "notification_list.html", gin.H{
		"Title":         "Notifications",
		"Notifications": result,
	})
}

// NotificationRead marks one notification as read.
func (h *Handler) NotificationRead(c *gin.Context) {
	userID := currentUserID(c)

	id, ok := pathID(c)
	if !ok {
		redirectWithMessage(c, "/notifications", "Notification not found")
		return
	}

	if err := h.notifications.MarkRead(userID, id); err != nil {
		redirectWithMessage(c, "/notifications", errorMessage(err))
		return
	}

	c.Redirect(http.StatusSeeOther, "/notifications")
}

// NotificationReadAll marks every unread notification as read.
func (h *Handler) NotificationReadAll(c *gin.Context) {
	userID := currentUserID(c)

	changed, err := h.notifications.MarkAllRead(userID)
	if err != nil {
		redirectWithMessage(c, "/notifications", errorMessage(err))
		return
	}

	redirectWithMessage(c, "/notifications", fmt.Sprintf("Marked %d notifications as read.", changed))
}
