package integration

import (
	"net/http"
	"testing"
)

func TestRegisterAndProfile(t *testing.T) {
	app := setupApp(t)

	token, userID := app.registerUser(t, "alice", "password123")
	if token == "" {
		t.Fatal("expected a token on registration")
	}

	rec := app.request("GET", "/api/v1/users/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	if user["username"] != "alice" {
		t.Errorf("expected username alice, got %v", user["username"])
	}
	if user["id"].(float64) != userID {
		t.Errorf("expected user id %v, got %v", userID, user["id"])
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "bob", "password123")

	rec := app.request("POST", "/api/v1/auth/register",
		`{"username":"bob","email":"other@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "DUPLICATE_USERNAME" {
		t.Errorf("expected DUPLICATE_USERNAME, got %s", code)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/v1/auth/register",
		`{"username":"carol","email":"carol@test.com","password":"short"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginReusesToken(t *testing.T) {
	app := setupApp(t)

	firstToken, _ := app.registerUser(t, "dave", "password123")

	// A second login hands back the same token instead of revoking the
	// first client's session.
	rec := app.request("POST", "/api/v1/auth/login",
		`{"username":"dave","password":"password123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	secondToken := parseJSON(t, rec)["token"].(string)
	if secondToken != firstToken {
		t.Fatal("expected login to reuse the existing token")
	}

	rec = app.request("GET", "/api/v1/users/profile", "", firstToken)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with the original token, got %d", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "erin", "password123")

	rec := app.request("POST", "/api/v1/auth/login",
		`{"username":"erin","password":"wrongpassword"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %s", code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	app := setupApp(t)

	token, _ := app.registerUser(t, "frank", "password123")

	rec := app.request("POST", "/api/v1/auth/logout", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/users/profile", "", token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestMissingToken(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/users/profile", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/receipts", "", "nonsense")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", rec.Code)
	}
}

func TestDeactivateBlocksAccess(t *testing.T) {
	app := setupApp(t)

	token, _ := app.registerUser(t, "grace", "password123")

	rec := app.request("POST", "/api/v1/users/deactivate", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/users/profile", "", token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after deactivation, got %d", rec.Code)
	}

	rec = app.request("POST", "/api/v1/auth/login",
		`{"username":"grace","password":"password123"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 login for deactivated account, got %d", rec.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	app := setupApp(t)

	token, _ := app.registerUser(t, "heidi", "password123")

	rec := app.request("PUT", "/api/v1/users/update_profile",
		`{"email":"heidi@example.org"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile failed: %d %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "heidi@example.org" {
		t.Errorf("expected updated email, got %v", user["email"])
	}

	// PATCH works the same as PUT for partial updates.
	rec = app.request("PATCH", "/api/v1/users/update_profile",
		`{"email":"heidi@example.net"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch profile failed: %d %s", rec.Code, rec.Body.String())
	}
	user = parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "heidi@example.net" {
		t.Errorf("expected patched email, got %v", user["email"])
	}
}
