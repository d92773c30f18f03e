package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAnalyticsEmptyWindow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "nobuyer", "password123")

	rec := app.request("GET", "/api/v1/receipts/analytics", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics failed: %d %s", rec.Code, rec.Body.String())
	}
	report := parseJSON(t, rec)
	summary := report["summary"].(map[string]interface{})

	total := decimal.RequireFromString(summary["total_expenses"].(string))
	if !total.IsZero() {
		t.Errorf("expected zero total, got %s", total)
	}
	if summary["total_receipts"].(float64) != 0 {
		t.Errorf("expected 0 receipts, got %v", summary["total_receipts"])
	}
	if report["period"].(map[string]interface{})["days"].(float64) != 30 {
		t.Errorf("expected default 30-day window, got %v", report["period"])
	}
}

func TestAnalyticsSplitPayments(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "splitter", "password123")

	cashID := int(app.createPaymentMethod(t, token, "Cash"))
	cardID := int(app.createPaymentMethod(t, token, "Card"))
	receiptID := int(app.createReceipt(t, token, "Split Shop", "120.50"))

	for _, payment := range []string{
		fmt.Sprintf(`{"payment_method_id":%d,"amount_paid":"70.00","paid_at":%q}`, cashID, today()),
		fmt.Sprintf(`{"payment_method_id":%d,"amount_paid":"50.50","paid_at":%q}`, cardID, today()),
	} {
		rec := app.request("POST", fmt.Sprintf("/api/v1/receipts/%d/payments", receiptID), payment, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create payment failed: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := app.request("GET", "/api/v1/receipts/analytics", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics failed: %d %s", rec.Code, rec.Body.String())
	}
	report := parseJSON(t, rec)

	// One receipt, but both payment methods get their own bucket.
	summary := report["summary"].(map[string]interface{})
	if summary["total_receipts"].(float64) != 1 {
		t.Errorf("expected 1 receipt, got %v", summary["total_receipts"])
	}

	byMethod := report["by_payment_method"].([]interface{})
	if len(byMethod) != 2 {
		t.Fatalf("expected 2 payment method buckets, got %d", len(byMethod))
	}
	totals := map[string]decimal.Decimal{}
	for _, entry := range byMethod {
		bucket := entry.(map[string]interface{})
		totals[bucket["name"].(string)] = decimal.RequireFromString(bucket["total"].(string))
	}
	if !totals["Cash"].Equal(decimal.RequireFromString("70.00")) {
		t.Errorf("expected Cash total 70.00, got %s", totals["Cash"])
	}
	if !totals["Card"].Equal(decimal.RequireFromString("50.50")) {
		t.Errorf("expected Card total 50.50, got %s", totals["Card"])
	}
}

func TestAnalyticsWindowExcludesOldReceipts(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "historian", "password123")

	app.createReceipt(t, token, "Recent Shop", "100.00")

	oldDate := time.Now().UTC().AddDate(0, 0, -60).Format("2006-01-02")
	body := fmt.Sprintf(`{"store_name":"Old Shop","total_amount":"999.00","purchase_date":%q}`, oldDate)
	rec := app.request("POST", "/api/v1/receipts", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create old receipt failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/receipts/analytics?days=30", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics failed: %d %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["total_receipts"].(float64) != 1 {
		t.Errorf("expected only the recent receipt, got %v", summary["total_receipts"])
	}
	total := decimal.RequireFromString(summary["total_expenses"].(string))
	if !total.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("expected total 100.00, got %s", total)
	}

	// A wider window picks the old receipt back up.
	rec = app.request("GET", "/api/v1/receipts/analytics?days=90", "", token)
	summary = parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["total_receipts"].(float64) != 2 {
		t.Errorf("expected 2 receipts in 90-day window, got %v", summary["total_receipts"])
	}
}

func TestAnalyticsByCategory(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "categorizer", "password123")

	groceriesID := int(app.createCategory(t, token, "Groceries"))
	fuelID := int(app.createCategory(t, token, "Fuel"))

	for _, body := range []string{
		fmt.Sprintf(`{"store_name":"Naivas","total_amount":"200.00","purchase_date":%q,"category_id":%d}`, today(), groceriesID),
		fmt.Sprintf(`{"store_name":"Quickmart","total_amount":"150.00","purchase_date":%q,"category_id":%d}`, today(), groceriesID),
		fmt.Sprintf(`{"store_name":"Shell","total_amount":"300.00","purchase_date":%q,"category_id":%d}`, today(), fuelID),
		fmt.Sprintf(`{"store_name":"Kiosk","total_amount":"10.00","purchase_date":%q}`, today()),
	} {
		rec := app.request("POST", "/api/v1/receipts", body, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create receipt failed: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := app.request("GET", "/api/v1/receipts/analytics", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics failed: %d %s", rec.Code, rec.Body.String())
	}
	report := parseJSON(t, rec)

	byCategory := report["by_category"].([]interface{})
	if len(byCategory) != 3 {
		t.Fatalf("expected 3 category buckets, got %d", len(byCategory))
	}

	// Buckets come back ordered by descending total.
	first := byCategory[0].(map[string]interface{})
	if first["name"] != "Groceries" {
		t.Errorf("expected Groceries first, got %v", first["name"])
	}
	if !decimal.RequireFromString(first["total"].(string)).Equal(decimal.RequireFromString("350.00")) {
		t.Errorf("expected Groceries total 350.00, got %v", first["total"])
	}
	if first["count"].(float64) != 2 {
		t.Errorf("expected Groceries count 2, got %v", first["count"])
	}

	last := byCategory[2].(map[string]interface{})
	if last["name"] != "Uncategorized" {
		t.Errorf("expected Uncategorized last, got %v", last["name"])
	}
}
