package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kvitto/internal/logger"
	"kvitto/internal/middleware"
)

// Home sends the browser to the dashboard; the session middleware bounces
// unauthenticated visitors to the login page from there.
func (h *Handler) Home(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// ShowLogin renders the login form.
func (h *Handler) ShowLogin(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Log in",
		"Form":  map[string]string{},
	})
}

// Login checks credentials and starts a browser session.
func (h *Handler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	user, err := h.users.AttemptLogin(username, password)
	if err != nil {
		h.render(c, http.StatusOK, "login.html", gin.H{
			"Title": "Log in",
			"Error": errorMessage(err),
			"Form":  map[string]string{"username": username},
		})
		return
	}

	token, err := middleware.GenerateSessionToken(user)
	if err != nil {
		logger.Get().Errorw("failed to sign session token", "error", err, "user_id", user.ID)
		h.render(c, http.StatusOK, "login.html", gin.H{
			"Title": "Log in",
			"Error": "Something went wrong. Please try again.",
			"Form":  map[string]string{"username": username},
		})
		return
	}

	middleware.SetSessionCookie(c, token)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// ShowRegister renders the registration form.
func (h *Handler) ShowRegister(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title":  "Register",
		"Form":   map[string]string{},
		"Errors": map[string]string{},
	})
}

// Register creates an account, emits the welcome notification, and logs the
// new user straight in.
func (h *Handler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirm := c.PostForm("password_confirm")

	form := map[string]string{"username": username, "email": email}
	errs := map[string]string{}
	if username == "" {
		errs["username"] = "Username is required"
	}
	if len(password) < 8 {
		errs["password"] = "Password must be at least 8 characters"
	}
	if password != confirm {
		errs["password_confirm"] = "Passwords do not match"
	}
	if len(errs) > 0 {
		h.render(c, http.StatusOK, "register.html", gin.H{
			"Title": "Register", "Form": form, "Errors": errs,
		})
		return
	}

	user, err := h.users.Register(username, email, password)
	if err != nil {
		if appErr, ok := asAppError(err); ok {
			switch appErr.Code {
			case "DUPLICATE_USERNAME":
				errs["username"] = appErr.Message
			case "DUPLICATE_EMAIL":
				errs["email"] = appErr.Message
			default:
				errs["username"] = appErr.Message
			}
		} else {
			logger.Get().Errorw("registration failed", "error", err)
			errs["username"] = "Something went wrong. Please try again."
		}
		h.render(c, http.StatusOK, "register.html", gin.H{
			"Title": "Register", "Form": form, "Errors": errs,
		})
		return
	}

	h.notifications.Notify(user.ID, fmt.Sprintf("Welcome to kvitto, %s!", user.Username))

	token, err := middleware.GenerateSessionToken(user)
	if err != nil {
		logger.Get().Errorw("failed to sign session token", "error", err, "user_id", user.ID)
		redirectWithMessage(c, "/login", "Account created. Please log in.")
		return
	}

	middleware.SetSessionCookie(c, token)
	redirectWithMessage(c, "/dashboard", "Account created.")
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c)
	redirectWithMessage(c, "/login", "You have been logged out.")
}
