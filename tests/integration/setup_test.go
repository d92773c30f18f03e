package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kvitto/internal/handlers"
	"kvitto/internal/logger"
	"kvitto/internal/middleware"
	"kvitto/internal/models"
	"kvitto/internal/services"
	"kvitto/internal/validator"
	"kvitto/internal/web"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.AuthToken{},
		&models.Category{},
		&models.PaymentMethod{},
		&models.Tag{},
		&models.Receipt{},
		&models.ReceiptItem{},
		&models.ReceiptPayment{},
		&models.ReceiptTag{},
		&models.Budget{},
		&models.Notification{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	categoryService := services.NewCategoryService(db)
	paymentMethodService := services.NewPaymentMethodService(db)
	tagService := services.NewTagService(db)
	receiptService := services.NewReceiptService(db)
	budgetService := services.NewBudgetService(db)
	notificationService := services.NewNotificationService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, tokenService)
	userHandler := handlers.NewUserHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	paymentMethodHandler := handlers.NewPaymentMethodHandler(paymentMethodService)
	tagHandler := handlers.NewTagHandler(tagService)
	receiptHandler := handlers.NewReceiptHandler(receiptService)
	itemHandler := handlers.NewReceiptItemHandler(receiptService)
	paymentHandler := handlers.NewReceiptPaymentHandler(receiptService)
	receiptTagHandler := handlers.NewReceiptTagHandler(receiptService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	// Web pages
	templates, err := web.Templates()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}
	router.SetHTMLTemplate(templates)
	webHandler := web.NewHandler(userService, receiptService, budgetService, categoryService, notificationService)
	webHandler.RegisterRoutes(router)

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.TokenAuth(tokenService))

	protected.POST("/auth/logout", authHandler.Logout)

	users := protected.Group("/users")
	users.GET("/profile", userHandler.Profile)
	users.PUT("/update_profile", userHandler.UpdateProfile)
	users.PATCH("/update_profile", userHandler.UpdateProfile)
	users.POST("/deactivate", userHandler.Deactivate)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.Create)
	categories.GET("", categoryHandler.List)
	categories.GET("/:id", categoryHandler.Get)
	categories.PUT("/:id", categoryHandler.Update)
	categories.DELETE("/:id", categoryHandler.Delete)

	methods := protected.Group("/payment-methods")
	methods.POST("", paymentMethodHandler.Create)
	methods.GET("", paymentMethodHandler.List)
	methods.GET("/:id", paymentMethodHandler.Get)
	methods.PUT("/:id", paymentMethodHandler.Update)
	methods.DELETE("/:id", paymentMethodHandler.Delete)

	tags := protected.Group("/tags")
	tags.POST("", tagHandler.Create)
	tags.GET("", tagHandler.List)
	tags.GET("/:id", tagHandler.Get)
	tags.PUT("/:id", tagHandler.Update)
	tags.DELETE("/:id", tagHandler.Delete)

	receipts := protected.Group("/receipts")
	receipts.POST("", receiptHandler.Create)
	receipts.GET("", receiptHandler.List)
	receipts.GET("/analytics", receiptHandler.Analytics)
	receipts.GET("/:id", receiptHandler.Get)
	receipts.PUT("/:id", receiptHandler.Update)
	receipts.DELETE("/:id", receiptHandler.Delete)
	receipts.POST("/:id/items", itemHandler.Create)
	receipts.POST("/:id/payments", paymentHandler.Create)
	receipts.POST("/:id/tags", receiptTagHandler.Attach)

	items := protected.Group("/receipt-items")
	items.GET("", itemHandler.List)
	items.GET("/:id", itemHandler.Get)
	items.PUT("/:id", itemHandler.Update)
	items.DELETE("/:id", itemHandler.Delete)

	payments := protected.Group("/receipt-payments")
	payments.GET("", paymentHandler.List)
	payments.GET("/:id", paymentHandler.Get)
	payments.PUT("/:id", paymentHandler.Update)
	payments.DELETE("/:id", paymentHandler.Delete)

	receiptTags := protected.Group("/receipt-tags")
	receiptTags.GET("", receiptTagHandler.List)
	receiptTags.GET("/:id", receiptTagHandler.Get)
	receiptTags.DELETE("/:id", receiptTagHandler.Detach)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.Create)
	budgets.GET("", budgetHandler.List)
	budgets.GET("/:id", budgetHandler.Get)
	budgets.PUT("/:id", budgetHandler.Update)
	budgets.DELETE("/:id", budgetHandler.Delete)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)

	return &testApp{DB: db, Router: router}
}

// request makes a JSON API request and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// formRequest posts an HTML form, optionally with cookies from a prior response.
func (app *testApp) formRequest(method, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var body string
	if form != nil {
		body = form.Encode()
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// errorCode extracts the error code from a JSON error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// fieldMessage extracts one field message from a validation error response.
func fieldMessage(t *testing.T, rec *httptest.ResponseRecorder, field string) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got: %s", rec.Body.String())
	}
	fields, ok := errObj["fields"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected fields in error, got: %s", rec.Body.String())
	}
	message, _ := fields[field].(string)
	return message
}

// registerUser registers a new user and returns the API token and user ID.
func (app *testApp) registerUser(t *testing.T, username, password string) (token string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":%q}`, username, username+"@test.com", password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(float64)
}

// createCategory creates a shared category and returns its ID.
func (app *testApp) createCategory(t *testing.T, token, name string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/categories", fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["category"].(map[string]interface{})["id"].(float64)
}

// createPaymentMethod creates a shared payment method and returns its ID.
func (app *testApp) createPaymentMethod(t *testing.T, token, name string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/payment-methods",
		fmt.Sprintf(`{"name":%q,"is_digital":true}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create payment method failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["payment_method"].(map[string]interface{})["id"].(float64)
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// createReceipt creates a receipt dated today and returns its ID.
func (app *testApp) createReceipt(t *testing.T, token, store, amount string) float64 {
	t.Helper()
	body := fmt.Sprintf(`{"store_name":%q,"total_amount":%q,"purchase_date":%q}`,
		store, amount, today())
	rec := app.request("POST", "/api/v1/receipts", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create receipt failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["receipt"].(map[string]interface{})["id"].(float64)
}
