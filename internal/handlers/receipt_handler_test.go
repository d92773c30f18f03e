package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/models"
	"kvitto/internal/pagination"
	"kvitto/internal/services"
	"kvitto/internal/validation"
)

// --- mock receipt service ---

type mockReceiptService struct {
	createReceiptFn  func(userID uint, in services.ReceiptInput) (*models.Receipt, error)
	getReceiptsFn    func(userID uint, page pagination.PageRequest, filter services.ReceiptFilter) (*pagination.PageResponse[models.Receipt], error)
	getReceiptByIDFn func(userID, receiptID uint) (*models.Receipt, error)
	updateReceiptFn  func(userID, receiptID uint, in services.ReceiptInput) (*models.Receipt, error)
	deleteReceiptFn  func(userID, receiptID uint) error
	analyticsFn      func(userID uint, days int) (*services.AnalyticsReport, error)
	createItemFn     func(userID, receiptID uint, in services.ItemInput) (*models.ReceiptItem, error)
	attachTagFn      func(userID, receiptID, tagID uint) (*models.ReceiptTag, error)
}

func (m *mockReceiptService) CreateReceipt(userID uint, in services.ReceiptInput) (*models.Receipt, error) {
	if m.createReceiptFn != nil {
		return m.createReceiptFn(userID, in)
	}
	return &models.Receipt{}, nil
}

func (m *mockReceiptService) GetReceipts(userID uint, page pagination.PageRequest, filter services.ReceiptFilter) (*pagination.PageResponse[models.Receipt], error) {
	if m.getReceiptsFn != nil {
		return m.getReceiptsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Receipt{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockReceiptService) GetReceiptByID(userID, receiptID uint) (*models.Receipt, error) {
	if m.getReceiptByIDFn != nil {
		return m.getReceiptByIDFn(userID, receiptID)
	}
	return &models.Receipt{}, nil
}

func (m *mockReceiptService) UpdateReceipt(userID, receiptID uint, in services.ReceiptInput) (*models.Receipt, error) {
	if m.updateReceiptFn != nil {
		return m.updateReceiptFn(userID, receiptID, in)
	}
	return &models.Receipt{}, nil
}

func (m *mockReceiptService) DeleteReceipt(userID, receiptID uint) error {
	if m.deleteReceiptFn != nil {
		return m.deleteReceiptFn(userID, receiptID)
	}
	return nil
}

func (m *mockReceiptService) Analytics(userID uint, days int) (*services.AnalyticsReport, error) {
	if m.analyticsFn != nil {
		return m.analyticsFn(userID, days)
	}
	return &services.AnalyticsReport{}, nil
}

func (m *mockReceiptService) CreateItem(userID, receiptID uint, in services.ItemInput) (*models.ReceiptItem, error) {
	if m.createItemFn != nil {
		return m.createItemFn(userID, receiptID, in)
	}
	return &models.ReceiptItem{}, nil
}

func (m *mockReceiptService) GetItems(uint, *uint, pagination.PageRequest) (*pagination.PageResponse[models.ReceiptItem], error) {
	resp := pagination.NewPageResponse([]models.ReceiptItem{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockReceiptService) GetItemByID(uint, uint) (*models.ReceiptItem, error) {
	return &models.ReceiptItem{}, nil
}

func (m *mockReceiptService) UpdateItem(uint, uint, services.ItemInput) (*models.ReceiptItem, error) {
	return &models.ReceiptItem{}, nil
}

func (m *mockReceiptService) DeleteItem(uint, uint) error { return nil }

func (m *mockReceiptService) CreatePayment(uint, uint, services.PaymentInput) (*models.ReceiptPayment, error) {
	return &models.ReceiptPayment{}, nil
}

func (m *mockReceiptService) GetPayments(uint, *uint, pagination.PageRequest) (*pagination.PageResponse[models.ReceiptPayment], error) {
	resp := pagination.NewPageResponse([]models.ReceiptPayment{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockReceiptService) GetPaymentByID(uint, uint) (*models.ReceiptPayment, error) {
	return &models.ReceiptPayment{}, nil
}

func (m *mockReceiptService) UpdatePayment(uint, uint, services.PaymentInput) (*models.ReceiptPayment, error) {
	return &models.ReceiptPayment{}, nil
}

func (m *mockReceiptService) DeletePayment(uint, uint) error { return nil }

func (m *mockReceiptService) AttachTag(userID, receiptID, tagID uint) (*models.ReceiptTag, error) {
	if m.attachTagFn != nil {
		return m.attachTagFn(userID, receiptID, tagID)
	}
	return &models.ReceiptTag{}, nil
}

func (m *mockReceiptService) GetReceiptTags(uint, *uint, pagination.PageRequest) (*pagination.PageResponse[models.ReceiptTag], error) {
	resp := pagination.NewPageResponse([]models.ReceiptTag{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockReceiptService) GetReceiptTagByID(uint, uint) (*models.ReceiptTag, error) {
	return &models.ReceiptTag{}, nil
}

func (m *mockReceiptService) DetachTag(uint, uint) error { return nil }

var _ services.ReceiptServicer = (*mockReceiptService)(nil)

func setupReceiptRouter(handler *ReceiptHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/receipts", handler.Create)
	auth.GET("/receipts", handler.List)
	auth.GET("/receipts/analytics", handler.Analytics)
	auth.GET("/receipts/:id", handler.Get)
	auth.PUT("/receipts/:id", handler.Update)
	auth.DELETE("/receipts/:id", handler.Delete)
	return r
}

func TestReceiptHandler_Create(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockReceiptService{
			createReceiptFn: func(userID uint, in services.ReceiptInput) (*models.Receipt, error) {
				return &models.Receipt{
					Base:         models.Base{ID: 1},
					UserID:       userID,
					StoreName:    in.StoreName,
					TotalAmount:  in.TotalAmount,
					Currency:     "KES",
					PurchaseDate: in.PurchaseDate,
				}, nil
			},
		}
		handler := NewReceiptHandler(svc)
		r := setupReceiptRouter(handler)

		rec := doRequest(r, "POST", "/receipts",
			`{"store_name":"Naivas","total_amount":"1250.50","purchase_date":"2026-08-30"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		receipt := result["receipt"].(map[string]interface{})
		if receipt["store_name"] != "Naivas" {
			t.Errorf("expected store Naivas, got %v", receipt["store_name"])
		}
	})

	t.Run("returns 400 with field messages on validation failure", func(t *testing.T) {
		svc := &mockReceiptService{
			createReceiptFn: func(uint, services.ReceiptInput) (*models.Receipt, error) {
				verr := apperrors.NewValidationError()
				verr.Add("total_amount", validation.MsgAmountNotPositive)
				return nil, verr
			},
		}
		handler := NewReceiptHandler(svc)
		r := setupReceiptRouter(handler)

		rec := doRequest(r, "POST", "/receipts",
			`{"store_name":"Naivas","total_amount":"0","purchase_date":"2026-08-30"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		errObj := result["error"].(map[string]interface{})
		fields := errObj["fields"].(map[string]interface{})
		if fields["total_amount"] != validation.MsgAmountNotPositive {
			t.Errorf("expected amount message, got %v", fields["total_amount"])
		}
	})

	t.Run("returns 400 on bad purchase date", func(t *testing.T) {
		handler := NewReceiptHandler(&mockReceiptService{})
		r := setupReceiptRouter(handler)

		rec := doRequest(r, "POST", "/receipts",
			`{"store_name":"Naivas","total_amount":"10.00","purchase_date":"30/08/2026"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestReceiptHandler_Get(t *testing.T) {
	t.Run("returns 403 for someone else's receipt", func(t *testing.T) {
		svc := &mockReceiptService{
			getReceiptByIDFn: func(uint, uint) (*models.Receipt, error) {
				return nil, apperrors.ErrForbidden
			},
		}
		handler := NewReceiptHandler(svc)
		r := setupReceiptRouter(handler)

		rec := doRequest(r, "GET", "/receipts/42", "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "FORBIDDEN")
	})

	t.Run("returns 404 for a missing receipt", func(t *testing.T) {
		svc := &mockReceiptService{
			getReceiptByIDFn: func(uint, uint) (*models.Receipt, error) {
				return nil, apperrors.ErrReceiptNotFound
			},
		}
		handler := NewReceiptHandler(svc)
		r := setupReceiptRouter(handler)

		rec := doRequest(r, "GET", "/receipts/42", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestReceiptHandler_List(t *testing.T) {
	t.Run("parses combinable filters", func(t *testing.T) {
		var got services.ReceiptFilter
		svc := &mockReceiptService{
			getReceiptsFn: func(_ uint, _ pagination.PageRequest, filter services.ReceiptFilter) (*pagination.PageResponse[models.Receipt], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Receipt{}, 1, 20, 0)
				return &resp, nil
			},
		}
		handler := NewReceiptHandler(svc)
		r := setupReceiptRouter(handler)

		rec := doRequest(r, "GET",
			"/receipts?search=milk&tags=work,travel&min_amount=5.00&date_from=2026-08-01", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Search != "milk" {
			t.Errorf("expected search milk, got %q", got.Search)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "travel" {
			t.Errorf("expected tags [work travel], got %v", got.Tags)
		}
		if got.AmountMin == nil || !got.AmountMin.Equal(decimal.RequireFromString("5.00")) {
			t.Errorf("expected min amount 5.00, got %v", got.AmountMin)
		}
		if got.DateFrom == nil {
			t.Error("expected date_from to be parsed")
		}
	})
}

func TestReceiptHandler_Analytics(t *testing.T) {
	t.Run("passes the window length through", func(t *testing.T) {
		gotDays := -1
		svc := &mockReceiptService{
			analyticsFn: func(_ uint, days int) (*services.AnalyticsReport, error) {
				gotDays = days
				return &services.AnalyticsReport{}, nil
			},
		}
		handler := NewReceiptHandler(svc)
		r := setupReceiptRouter(handler)

		rec := doRequest(r, "GET", "/receipts/analytics?days=90", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotDays != 90 {
			t.Errorf("expected 90 days, got %d", gotDays)
		}
	})
}
