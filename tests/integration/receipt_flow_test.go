package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestReceiptFullFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "shopper", "password123")

	categoryID := app.createCategory(t, token, "Groceries")
	methodID := app.createPaymentMethod(t, token, "M-PESA")

	// Create a receipt in the category.
	body := fmt.Sprintf(`{"store_name":"Naivas","total_amount":"120.50","purchase_date":%q,"category_id":%d,"notes":"weekly shop"}`,
		today(), int(categoryID))
	rec := app.request("POST", "/api/v1/receipts", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create receipt failed: %d %s", rec.Code, rec.Body.String())
	}
	receipt := parseJSON(t, rec)["receipt"].(map[string]interface{})
	receiptID := int(receipt["id"].(float64))

	// Add a line item.
	rec = app.request("POST", fmt.Sprintf("/api/v1/receipts/%d/items", receiptID),
		`{"item_name":"Milk","quantity":3,"unit_price":"40.00","total_price":"120.00"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item failed: %d %s", rec.Code, rec.Body.String())
	}

	// Record a split payment.
	rec = app.request("POST", fmt.Sprintf("/api/v1/receipts/%d/payments", receiptID),
		fmt.Sprintf(`{"payment_method_id":%d,"amount_paid":"120.50","paid_at":%q}`, int(methodID), today()), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create payment failed: %d %s", rec.Code, rec.Body.String())
	}

	// Tag the receipt.
	rec = app.request("POST", "/api/v1/tags", `{"name":"essentials"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create tag failed: %d %s", rec.Code, rec.Body.String())
	}
	tagID := int(parseJSON(t, rec)["tag"].(map[string]interface{})["id"].(float64))

	rec = app.request("POST", fmt.Sprintf("/api/v1/receipts/%d/tags", receiptID),
		fmt.Sprintf(`{"tag_id":%d}`, tagID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("attach tag failed: %d %s", rec.Code, rec.Body.String())
	}

	// The detail view carries items, payments, and tags.
	rec = app.request("GET", fmt.Sprintf("/api/v1/receipts/%d", receiptID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get receipt failed: %d %s", rec.Code, rec.Body.String())
	}
	detail := parseJSON(t, rec)["receipt"].(map[string]interface{})
	if items, ok := detail["items"].([]interface{}); !ok || len(items) != 1 {
		t.Errorf("expected 1 item, got %v", detail["items"])
	}
	if payments, ok := detail["payments"].([]interface{}); !ok || len(payments) != 1 {
		t.Errorf("expected 1 payment, got %v", detail["payments"])
	}
	if tags, ok := detail["tags"].([]interface{}); !ok || len(tags) != 1 {
		t.Errorf("expected 1 tag, got %v", detail["tags"])
	}

	total := decimal.RequireFromString(detail["total_amount"].(string))
	if !total.Equal(decimal.RequireFromString("120.50")) {
		t.Errorf("expected total 120.50, got %s", total)
	}
}

func TestReceiptPaymentDateFormats(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "payer", "password123")
	receiptID := int(app.createReceipt(t, token, "Corner Shop", "80.00"))
	path := fmt.Sprintf("/api/v1/receipts/%d/payments", receiptID)

	// A bare date is accepted alongside a full timestamp.
	anHourAgo := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	for _, paidAt := range []string{today(), anHourAgo} {
		rec := app.request("POST", path,
			fmt.Sprintf(`{"amount_paid":"40.00","paid_at":%q}`, paidAt), token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("paid_at %q rejected: %d %s", paidAt, rec.Code, rec.Body.String())
		}
	}

	rec := app.request("POST", path, `{"amount_paid":"40.00","paid_at":"30/08/2026"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed paid_at, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT, got %s", code)
	}
}

func TestReceiptItemTotalMismatch(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "picky", "password123")
	receiptID := int(app.createReceipt(t, token, "Shop", "50.00"))

	rec := app.request("POST", fmt.Sprintf("/api/v1/receipts/%d/items", receiptID),
		`{"item_name":"Bread","quantity":2,"unit_price":"20.00","total_price":"50.00"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := fieldMessage(t, rec, "total_price"); msg != "Total price should equal quantity multiplied by unit price" {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestReceiptFutureDate(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "tardis", "password123")

	rec := app.request("POST", "/api/v1/receipts",
		`{"store_name":"Shop","total_amount":"10.00","purchase_date":"2099-01-01"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := fieldMessage(t, rec, "purchase_date"); msg != "Purchase date cannot be in the future" {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestReceiptOwnershipEnforced(t *testing.T) {
	app := setupApp(t)
	ownerToken, _ := app.registerUser(t, "owner", "password123")
	otherToken, _ := app.registerUser(t, "snoop", "password123")

	receiptID := int(app.createReceipt(t, ownerToken, "Private Shop", "99.00"))

	rec := app.request("GET", fmt.Sprintf("/api/v1/receipts/%d", receiptID), "", otherToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on get, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "FORBIDDEN" {
		t.Errorf("expected FORBIDDEN, got %s", code)
	}

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/receipts/%d", receiptID), "", otherToken)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 on delete, got %d", rec.Code)
	}

	rec = app.request("POST", fmt.Sprintf("/api/v1/receipts/%d/items", receiptID),
		`{"item_name":"Sneaky","quantity":1,"unit_price":"1.00","total_price":"1.00"}`, otherToken)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 on item create, got %d", rec.Code)
	}

	// The owner still has full access.
	rec = app.request("GET", fmt.Sprintf("/api/v1/receipts/%d", receiptID), "", ownerToken)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for owner, got %d", rec.Code)
	}
}

func TestReceiptDeleteCascades(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "cleaner", "password123")

	receiptID := int(app.createReceipt(t, token, "Doomed Shop", "30.00"))
	rec := app.request("POST", fmt.Sprintf("/api/v1/receipts/%d/items", receiptID),
		`{"item_name":"Eggs","quantity":1,"unit_price":"30.00","total_price":"30.00"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item failed: %d %s", rec.Code, rec.Body.String())
	}
	itemID := int(parseJSON(t, rec)["item"].(map[string]interface{})["id"].(float64))

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/receipts/%d", receiptID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete receipt failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/receipts/%d", receiptID), "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for deleted receipt, got %d", rec.Code)
	}
	rec = app.request("GET", fmt.Sprintf("/api/v1/receipt-items/%d", itemID), "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for orphaned item, got %d", rec.Code)
	}
}

func TestReceiptListAndSearch(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "lister", "password123")

	app.createReceipt(t, token, "Naivas Supermarket", "100.00")
	app.createReceipt(t, token, "Shell Petrol", "45.00")
	app.createReceipt(t, token, "Naivas Express", "20.00")

	rec := app.request("GET", "/api/v1/receipts", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["total_items"].(float64) != 3 {
		t.Errorf("expected 3 receipts, got %v", result["total_items"])
	}

	rec = app.request("GET", "/api/v1/receipts?search=Naivas", "", token)
	result = parseJSON(t, rec)
	if result["total_items"].(float64) != 2 {
		t.Errorf("expected 2 search matches, got %v", result["total_items"])
	}

	rec = app.request("GET", "/api/v1/receipts?min_amount=50", "", token)
	result = parseJSON(t, rec)
	if result["total_items"].(float64) != 1 {
		t.Errorf("expected 1 receipt above 50, got %v", result["total_items"])
	}
}
