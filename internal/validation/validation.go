// Package validation holds the business rules for financial entities.
// Every write path (API handlers and web forms alike) goes through these
// functions so the same rule cannot be bypassed by a different interface.
package validation

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/models"
)

// Messages shown for rule violations. The web forms render them inline and
// the API returns them per field.
const (
	MsgAmountNotPositive  = "Amount must be greater than zero"
	MsgFutureDate         = "Purchase date cannot be in the future"
	MsgQuantityRequired   = "Quantity must be greater than zero"
	MsgUnitPricePositive  = "Unit price must be greater than zero"
	MsgTotalPricePositive = "Total price must be greater than zero"
	MsgItemTotalMismatch  = "Total price should equal quantity multiplied by unit price"
	MsgFuturePayment      = "Payment date cannot be in the future"
	MsgLimitNotPositive   = "Amount limit must be greater than zero"
	MsgPeriodInverted     = "Period end must be on or after period start"
	MsgPeriodStartPast    = "Period start date cannot be in the past"
)

// today returns midnight of the current local day.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// dateOnly strips the time-of-day component.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Receipt checks the receipt rules: strictly positive amount and a purchase
// date no later than today. Category existence is a referential check handled
// by the service layer against the database.
func Receipt(r *models.Receipt) error {
	verr := apperrors.NewValidationError()
	if !r.TotalAmount.IsPositive() {
		verr.Add("total_amount", MsgAmountNotPositive)
	}
	if dateOnly(r.PurchaseDate).After(today()) {
		verr.Add("purchase_date", MsgFutureDate)
	}
	return verr.ErrOrNil()
}

// ReceiptItem checks that quantity and both prices are strictly positive and
// that the line total equals quantity times unit price exactly. The equality
// is a decimal comparison with no rounding tolerance; a mismatch is a hard
// failure, not a warning.
func ReceiptItem(it *models.ReceiptItem) error {
	verr := apperrors.NewValidationError()
	if it.Quantity == 0 {
		verr.Add("quantity", MsgQuantityRequired)
	}
	if !it.UnitPrice.IsPositive() {
		verr.Add("unit_price", MsgUnitPricePositive)
	}
	if !it.TotalPrice.IsPositive() {
		verr.Add("total_price", MsgTotalPricePositive)
	}
	if verr.HasErrors() {
		return verr
	}

	expected := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	if !it.TotalPrice.Equal(expected) {
		verr.Add("total_price", MsgItemTotalMismatch)
	}
	return verr.ErrOrNil()
}

// ReceiptPayment checks for a strictly positive amount and a payment time no
// later than now.
func ReceiptPayment(p *models.ReceiptPayment) error {
	verr := apperrors.NewValidationError()
	if !p.AmountPaid.IsPositive() {
		verr.Add("amount_paid", MsgAmountNotPositive)
	}
	if p.PaidAt.After(time.Now()) {
		verr.Add("paid_at", MsgFuturePayment)
	}
	return verr.ErrOrNil()
}

// Budget checks the budget rules. The past-start rule only applies when a
// budget is created (isCreate); editing an existing budget may keep a period
// that has since begun.
func Budget(b *models.Budget, isCreate bool) error {
	verr := apperrors.NewValidationError()
	if !b.AmountLimit.IsPositive() {
		verr.Add("amount_limit", MsgLimitNotPositive)
	}
	if dateOnly(b.PeriodEnd).Before(dateOnly(b.PeriodStart)) {
		verr.Add("period_end", MsgPeriodInverted)
	}
	if isCreate && dateOnly(b.PeriodStart).Before(today()) {
		verr.Add("period_start", MsgPeriodStartPast)
	}
	return verr.ErrOrNil()
}
