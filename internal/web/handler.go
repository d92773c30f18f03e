// Package web serves the server-rendered HTML pages. Browsers authenticate
// with a signed session cookie instead of an API token, and mutations flow
// through the same service layer as the JSON API.
package web

import (
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"kvitto/internal/middleware"
	"kvitto/internal/services"
	webassets "kvitto/web"
)

// Handler renders the HTML pages and handles their form submissions.
type Handler struct {
	users         services.UserServicer
	receipts      services.ReceiptServicer
	budgets       services.BudgetServicer
	categories    services.CategoryServicer
	notifications services.NotificationServicer
}

// NewHandler creates a web Handler over the shared services.
func NewHandler(
	users services.UserServicer,
	receipts services.ReceiptServicer,
	budgets services.BudgetServicer,
	categories services.CategoryServicer,
	notifications services.NotificationServicer,
) *Handler {
	return &Handler{
		users:         users,
		receipts:      receipts,
		budgets:       budgets,
		categories:    categories,
		notifications: notifications,
	}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	funcs := template.FuncMap{
		"date":     func(t time.Time) string { return t.Format("2006-01-02") },
		"datetime": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
		"money":    func(d decimal.Decimal) string { return d.StringFixed(2) },
	}
	return template.New("").Funcs(funcs).ParseFS(webassets.TemplatesFS, "templates/*.html")
}

// RegisterRoutes mounts the web pages and static assets on the engine.
// The engine must already have the templates from Templates() set.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	if static, err := fs.Sub(webassets.StaticFS, "static"); err == nil {
		r.StaticFS("/static", http.FS(static))
	}

	r.GET("/", h.Home)
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.Register)
	r.GET("/logout", h.Logout)

	pages := r.Group("", middleware.SessionAuth(h.users))
	pages.GET("/dashboard", h.Dashboard)

	pages.GET("/receipts", h.ReceiptList)
	pages.GET("/receipts/create", h.ReceiptCreateForm)
	pages.POST("/receipts/create", h.ReceiptCreate)
	pages.GET("/receipts/:id", h.ReceiptDetail)
	pages.GET("/receipts/:id/edit", h.ReceiptEditForm)
	pages.POST("/receipts/:id/edit", h.ReceiptUpdate)
	pages.POST("/receipts/:id/delete", h.ReceiptDelete)

	pages.GET("/budgets", h.BudgetList)
	pages.GET("/budgets/create", h.BudgetCreateForm)
	pages.POST("/budgets/create", h.BudgetCreate)
	pages.GET("/budgets/:id/edit", h.BudgetEditForm)
	pages.POST("/budgets/:id/edit", h.BudgetUpdate)
	pages.POST("/budgets/:id/delete", h.BudgetDelete)

	pages.GET("/notifications", h.NotificationList)
	pages.POST("/notifications/:id/read", h.NotificationRead)
	pages.POST("/notifications/read_all", h.NotificationReadAll)
}
