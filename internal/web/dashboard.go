package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kvitto/internal/pagination"
	"kvitto/internal/services"
)

// dashboardWindowDays is the trailing analytics window shown on the dashboard.
const dashboardWindowDays = 30

// Dashboard shows the spending summary, recent receipts, and the unread
// notification count.
func (h *Handler) Dashboard(c *gin.Context) {
	userID := currentUserID(c)

	report, err := h.receipts.Analytics(userID, dashboardWindowDays)
	if err != nil {
		h.render(c, http.StatusOK, "dashboard.html", gin.H{
			"Title":       "Dashboard",
			"Error":       errorMessage(err),
			"Report":      &services.AnalyticsReport{},
			"UnreadCount": 0,
		})
		return
	}

	recent, err := h.receipts.GetReceipts(userID,
		pagination.PageRequest{Page: 1, PageSize: 5}, services.ReceiptFilter{})
	data := gin.H{
		"Title":  "Dashboard",
		"Report": report,
	}
	if err == nil {
		data["Recent"] = recent.Data
	}

	if notifications, err := h.notifications.GetUserNotifications(userID,
		pagination.PageRequest{Page: 1, PageSize: 100}); err == nil {
		unread := 0
		for _, n := range notifications.Data {
			if !n.IsRead {
				unread++
			}
		}
		data["UnreadCount"] = unread
	} else {
		data["UnreadCount"] = 0
	}

	h.render(c, http.StatusOK, "dashboard.html", data)
}
