package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"kvitto/internal/config"
	"kvitto/internal/models"
	"kvitto/internal/pagination"
	"kvitto/internal/services"
)

// parseReceiptForm reads the receipt form fields. It returns the parsed input,
// the raw values for redisplay, and any parse-level field errors.
func parseReceiptForm(c *gin.Context) (services.ReceiptInput, map[string]string, map[string]string) {
	form := map[string]string{
		"store_name":    strings.TrimSpace(c.PostForm("store_name")),
		"total_amount":  strings.TrimSpace(c.PostForm("total_amount")),
		"currency":      strings.ToUpper(strings.TrimSpace(c.PostForm("currency"))),
		"purchase_date": strings.TrimSpace(c.PostForm("purchase_date")),
		"category_id":   strings.TrimSpace(c.PostForm("category_id")),
		"notes":         strings.TrimSpace(c.PostForm("notes")),
	}
	errs := map[string]string{}

	in := services.ReceiptInput{
		StoreName: form["store_name"],
		Currency:  form["currency"],
		Notes:     form["notes"],
	}

	if form["total_amount"] != "" {
		amount, err := decimal.NewFromString(form["total_amount"])
		if err != nil {
			errs["total_amount"] = "Enter a valid amount"
		} else {
			in.TotalAmount = amount
		}
	}

	if form["purchase_date"] == "" {
		errs["purchase_date"] = "Purchase date is required"
	} else if date, err := time.Parse("2006-01-02", form["purchase_date"]); err != nil {
		errs["purchase_date"] = "Enter a valid date (YYYY-MM-DD)"
	} else {
		in.PurchaseDate = date
	}

	if form["category_id"] != "" {
		id, err := strconv.ParseUint(form["category_id"], 10, 32)
		if err != nil {
			errs["category_id"] = "Choose a valid category"
		} else {
			categoryID := uint(id)
			in.CategoryID = &categoryID
		}
	}

	return in, form, errs
}

func receiptFormValues(r *models.Receipt) map[string]string {
	form := map[string]string{
		"store_name":    r.StoreName,
		"total_amount":  r.TotalAmount.StringFixed(2),
		"currency":      r.Currency,
		"purchase_date": r.PurchaseDate.Format("2006-01-02"),
		"notes":         r.Notes,
	}
	if r.CategoryID != nil {
		form["category_id"] = strconv.FormatUint(uint64(*r.CategoryID), 10)
	}
	return form
}

func (h *Handler) renderReceiptForm(c *gin.Context, title, action string, form, errs map[string]string) {
	h.render(c, http.StatusOK, "receipt_form.html", gin.H{
		"Title":      title,
		"Action":     action,
		"Form":       form,
		"Errors":     errs,
		"Categories": h.loadCategories(),
	})
}

// receiptFieldErrors maps a service error onto the form fields.
func receiptFieldErrors(err error, errs map[string]string) (map[string]string, bool) {
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

// ReceiptList shows the user's receipts with the combinable filters.
func (h *Handler) ReceiptList(c *gin.Context) {
	userID := currentUserID(c)

	form := map[string]string{
		"search":     strings.TrimSpace(c.Query("search")),
		"category":   strings.TrimSpace(c.Query("category")),
		"date_from":  strings.TrimSpace(c.Query("date_from")),
		"date_to":    strings.TrimSpace(c.Query("date_to")),
		"min_amount": strings.TrimSpace(c.Query("min_amount")),
		"max_amount": strings.TrimSpace(c.Query("max_amount")),
	}

	filter := services.ReceiptFilter{Search: form["search"]}
	if form["category"] != "" {
		if id, err := strconv.ParseUint(form["category"], 10, 32); err == nil {
			categoryID := uint(id)
			filter.CategoryID = &categoryID
		}
	}
	if form["date_from"] != "" {
		if date, err := time.Parse("2006-01-02", form["date_from"]); err == nil {
			filter.DateFrom = &date
		}
	}
	if form["date_to"] != "" {
		if date, err := time.Parse("2006-01-02", form["date_to"]); err == nil {
			filter.DateTo = &date
		}
	}
	if form["min_amount"] != "" {
		if amount, err := decimal.NewFromString(form["min_amount"]); err == nil {
			filter.AmountMin = &amount
		}
	}
	if form["max_amount"] != "" {
		if amount, err := decimal.NewFromString(form["max_amount"]); err == nil {
			filter.AmountMax = &amount
		}
	}

	result, err := h.receipts.GetReceipts(userID, bindPage(c), filter)
	if err != nil {
		h.render(c, http.StatusOK, "receipt_list.html", gin.H{
			"Title":      "Receipts",
			"Error":      errorMessage(err),
			"Form":       form,
			"Categories": h.loadCategories(),
			"Receipts":   &pagination.PageResponse[models.Receipt]{},
		})
		return
	}

	h.render(c, http.StatusOK, "receipt_list.html", gin.H{
		"Title":      "Receipts",
		"Form":       form,
		"Categories": h.loadCategories(),
		"Receipts":   result,
	})
}

// ReceiptCreateForm renders an empty receipt form.
func (h *Handler) ReceiptCreateForm(c *gin.Context) {
	form := map[string]string{
		"currency":      config.Get().DefaultCurrency,
		"purchase_date": time.Now().UTC().Format("2006-01-02"),
	}
	h.renderReceiptForm(c, "Record a receipt", "/receipts/create", form, map[string]string{})
}

// ReceiptCreate stores a new receipt and emits a notification for it.
func (h *Handler) ReceiptCreate(c *gin.Context) {
	userID := currentUserID(c)

	in, form, errs := parseReceiptForm(c)
	if len(errs) > 0 {
		h.renderReceiptForm(c, "Record a receipt", "/receipts/create", form, errs)
		return
	}

	receipt, err := h.receipts.CreateReceipt(userID, in)
	if err != nil {
		if errs, handled := receiptFieldErrors(err, errs); handled {
			h.renderReceiptForm(c, "Record a receipt", "/receipts/create", form, errs)
			return
		}
		h.render(c, http.StatusOK, "receipt_form.html", gin.H{
			"Title": "Record a receipt", "Action": "/receipts/create",
			"Form": form, "Errors": errs,
			"Categories": h.loadCategories(),
			"Error":      errorMessage(err),
		})
		return
	}

	h.notifications.Notify(userID, fmt.Sprintf("Receipt %q (%s %s) recorded.",
		receipt.StoreName, receipt.Currency, receipt.TotalAmount.StringFixed(2)))
	redirectWithMessage(c, fmt.Sprintf("/receipts/%d", receipt.ID), "Receipt recorded.")
}

// ReceiptDetail shows one receipt with its items, payments, and tags.
func (h *Handler) ReceiptDetail(c *gin.Context) {
	userID := currentUserID(c)

	id, ok := pathID(c)
	if !ok {
		redirectWithMessage(c, "/receipts", "Receipt not found")
		return
	}

	receipt, err := h.receipts.GetReceiptByID(userID, id)
	if err != nil {
		redirectWithMessage(c, "/receipts", errorMessage(err))
		return
	}

	h.render(c, http.StatusOK, "receipt_detail.html", gin.H{
		"Title":   receipt.StoreName,
		"Receipt": receipt,
	})
}

// ReceiptEditForm renders the form prefilled with the receipt's fields.
func (h *Handler) ReceiptEditForm(c *gin.Context) {
	userID := currentUserID(c)

	id, ok := pathID(c)
	if !ok {
		redirectWithMessage(c, "/receipts", "Receipt not found")
		return
	}

	receipt, err := h.receipts.GetReceiptByID(userID, id)
	if err != nil {
		redirectWithMessage(c, "/receipts", errorMessage(err))
		return
	}

	action := fmt.Sprintf("/receipts/%d/edit", receipt.ID)
	h.renderReceiptForm(c, "Edit receipt", action, receiptFormValues(receipt), map[string]string{})
}

// ReceiptUpdate replaces a receipt's fields and emits a notification.
func (h *Handler) ReceiptUpdate(c *gin.Context) {
	userID := currentUserID(c)

	id, ok := pathID(c)
	if !ok {
		redirectWithMessage(c, "/receipts", "Receipt not found")
		return
	}
	action := fmt.Sprintf("/receipts/%d/edit", id)

	in, form, errs := parseReceiptForm(c)
	if len(errs) > 0 {
		h.renderReceiptForm(c, "Edit receipt", action, form, errs)
		return
	}

	receipt, err := h.receipts.UpdateReceipt(userID, id, in)
	if err != nil {
		if errs, handled := receiptFieldErrors(err, errs); handled {
			h.renderReceiptForm(c, "Edit receipt", action, form, errs)
			return
		}
		redirectWithMessage(c, "/receipts", errorMessage(err))
		return
	}

	h.notifications.Notify(userID, fmt.Sprintf("Receipt %q (%s %s) updated.",
		receipt.StoreName, receipt.Currency, receipt.TotalAmount.StringFixed(2)))
	redirectWithMessage(c, fmt.Sprintf("/receipts/%d", receipt.ID), "Receipt updated.")
}

// ReceiptDelete removes a receipt and its children.
func (h *Handler) ReceiptDelete(c *gin.Context) {
	userID := currentUserID(c)

	id, ok := pathID(c)
	if !ok {
		redirectWithMessage(c, "/receipts", "Receipt not found")
		return
	}

	receipt, err := h.receipts.GetReceiptByID(userID, id)
	if err != nil {
		redirectWithMessage(c, "/receipts", errorMessage(err))
		return
	}

	if err := h.receipts.DeleteReceipt(userID, id); err != nil {
		redirectWithMessage(c, "/receipts", errorMessage(err))
		return
	}

	h.notifications.Notify(userID, fmt.Sprintf("Receipt %q deleted.", receipt.StoreName))
	redirectWithMessage(c, "/receipts", "Receipt deleted.")
}
