package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"kvitto/internal/models"
	"kvitto/internal/pagination"
	"kvitto/internal/services"
)

// parseBudgetForm reads the budget form fields. It returns the parsed input,
// the raw values for redisplay, and any parse-level field errors.
func parseBudgetForm(c *gin.Context) (services.BudgetInput, map[string]string, map[string]string) {
	form := map[string]string{
		"category_id":  strings.TrimSpace(c.PostForm("category_id")),
		"amount_limit": strings.TrimSpace(c.PostForm("amount_limit")),
		"period_start": strings.TrimSpace(c.PostForm("period_start")),
		"period_end":   strings.TrimSpace(c.PostForm("period_end")),
	}
	errs := map[string]string{}
	var in services.BudgetInput

	if form["category_id"] == "" {
		errs["category_id"] = "Choose a category"
	} else if id, err := strconv.ParseUint(form["category_id"], 10, 32); err != nil {
		errs["category_id"] = "Choose a valid category"
	} else {
		in.CategoryID = uint(id)
	}

	if form["amount_limit"] != "" {
		amount, err := decimal.NewFromString(form["amount_limit"])
		if err != nil {
			errs["amount_limit"] = "Enter a valid amount"
		} else {
			in.AmountLimit = amount
		}
	}

	if form["period_start"] == "" {
		errs["period_start"] = "Period start is required"
	} else if date, err := time.Parse("2006-01-02", form["period_start"]); err != nil {
		errs["period_start"] = "Enter a valid date (YYYY-MM-DD)"
	} else {
		in.PeriodStart = date
	}

	if form["period_end"] == "" {
		errs["period_end"] = "Period end is required"
	} else if date, err := time.Parse("2006-01-02", form["period_end"]); err != nil {
		errs["period_end"] = "Enter a valid date (YYYY-MM-DD)"
	} else {
		in.PeriodEnd = date
	}

	return in, form, errs
}

func budgetFormValues(b *models.Budget) map[string]string {
	return map[string]string{
		"category_id":  strconv.FormatUint(uint64(b.CategoryID), 10),
		"amount_limit": b.AmountLimit.StringFixed(2),
		"period_start": b.PeriodStart.Format("2006-01-02"),
		"period_end":   b.PeriodEnd.Format("2006-01-02"),
	}
}

func (h *Handler) renderBudgetForm(c *gin.Context, title, action string, form, errs map[string]string, pageError string) {
	data := gin.H{
		"Title":      title,
		"Action":     action,
		"Form":       form,
		"Errors":     errs,
		"Categories": h.loadCategories(),
	}
	if pageError != "" {
		data["Error"] = pageError
	}
	h.render(c, http.StatusOK, "budget_form.html", data)
}

// budgetFieldErrors maps a service error onto the form fields.
func budgetFieldErrors(err error, errs map[string]string) (map[string]string, bool) {
	if verr, ok := asValidationError(err); ok {
		for field, message := range verr.Fields {
			if _, taken := errs[field]; !taken {
				errs[field] = message
			}
		}
		return errs, true
	}
	if appErr, ok := asAppError(err); ok && appErr.Code == "CATEGORY_NOT_FOUND" {
		errs["category_id"] = appErr.Message
		return errs, true
	}
	return errs, false
}

// budgetLabel names a budget in notifications, preferring the category name.
func (h *Handler) budgetLabel(userID uint, budget *models.Budget) string {
	if budget.Category.Name != "" {
		return budget.Category.Name
	}
	if loaded, err := h.budgets.GetBudgetByID(userID, budget.ID); err == nil {
		return loaded.Category.Name
	}
	return fmt.Sprintf("category #%d", budget.CategoryID)
}

// BudgetList shows the user's budgets, most recent period first.
func (h *Handler) BudgetList(c *gin.Context) {
	userID := currentUserID(c)

	result, err := h.budgets.GetUserBudgets(userID, bindPage(c), nil)
	if err != nil {
		h.render(c, http.StatusOK, "budget_list.html", gin.H{
			"Title":   "Budgets",
			"Error":   errorMessage(err),
			"Budgets": &pagination.PageResponse[models.Budget]{},
		})
		return
	}

	h.render(c, http.StatusOK, "budget_list.html", gin.H{
		"Title":   "Budgets",
		"Budgets": result,
	})
}

// BudgetCreateForm renders an empty budget form.
func (h *Handler) BudgetCreateForm(c *gin.Context) {
	h.renderBudgetForm(c, "Add a budget", "/budgets/create", map[string]string{}, map[string]string{}, "")
}

// BudgetCreate stores a new budget and emits a notification for it.
func (h *Handler) BudgetCreate(c *gin.Context) {
	userID := currentUserID(c)

	in, form, errs := parseBudgetForm(c)
	if len(errs) > 0 {
		h.renderBudgetForm(c, "Add a budget", "/budgets/create", form, errs, "")
		return
	}

	budget, err := h.budgets.CreateBudget(userID, in)
	if err != nil {
		if errs, handled := budgetFieldErrors(err, errs); handled {
			h.renderBudgetForm(c, "Add a budget", "/budgets/create", form, errs, "")
			return
		}
		h.renderBudgetForm(c, "Add a budget", "/budgets/create", form, errs, errorMessage(err))
		return
	}

	h.notifications.Notify(userID, fmt.Sprintf("Budget for %q (%s) created.",
		h.budgetLabel(userID, budget), budget.AmountLimit.StringFixed(2)))
	redirectWithMessage(c, "/budgets", "Budget created.")
}

// BudgetEditForm renders the form prefilled with the budget's fields.
func (h *Handler) BudgetEditForm(c *gin.Context) {
	userID := currentUserID(c)

	id, ok := pathID(c)
	if !ok {
		redirectWithMessage(c, "/budgets", "Budget not found")
		return
	}

	budget, err := h.budgets.GetBudgetByID(userID, id)
	if err != nil {
		redirectWithMessage(c, "/budgets", errorMessage(err))
		return
	}

	action := fmt.Sprintf("/budgets/%d/edit", budget.ID)
	h.renderBudgetForm(c, "Edit budget", action, budgetFormValues(budget), map[string]string{}, "")
}

// BudgetUpdate replaces a budget's fields and emits a notification.
func (h *Handler) BudgetUpdate(c *gin.Context) {
	userID := currentUserID(c)

	id, ok := pathID(c)
	if !ok {
		redirectWithMessage(c, "/budgets", "Budget not found")
		return
	}
	action := fmt.Sprintf("/budgets/%d/edit", id)

	in, form, errs := parseBudgetForm(c)
	if len(errs) > 0 {
		h.renderBudgetForm(c, "Edit budget", action, form, errs, "")
		return
	}

	budget, err := h.budgets.UpdateBudget(userID, id, in)
	if err != nil {
		if errs, handled := budgetFieldErrors(err, errs); handled {
			h.renderBudgetForm(c, "Edit budget", action, form, errs, "")
			return
		}
		redirectWithMessage(c, "/budgets", errorMessage(err))
		return
	}

	h.notifications.Notify(userID, fmt.Sprintf("Budget for %q (%s) updated.",
		h.budgetLabel(userID, budget), budget.AmountLimit.StringFixed(2)))
	redirectWithMessage(c, "/budgets", "Budget updated.")
}

// BudgetDelete removes a budget.
func (h *Handler) BudgetDelete(c *gin.Context) {
	userID := currentUserID(c)

	id, ok := pathID(c)
	if !ok {
		redirectWithMessage(c, "/budgets", "Budget not found")
		return
	}

	budget, err := h.budgets.GetBudgetByID(userID, id)
	if err != nil {
		redirectWithMessage(c, "/budgets", errorMessage(err))
		return
	}

	if err := h.budgets.DeleteBudget(userID, id); err != nil {
		redirectWithMessage(c, "/budgets", errorMessage(err))
		return
	}

	h.notifications.Notify(userID, fmt.Sprintf("Budget for %q deleted.",
		h.budgetLabel(userID, budget)))
	redirectWithMessage(c, "/budgets", "Budget deleted.")
}
