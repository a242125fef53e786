package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"bookstore/models"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// The one message every failed login gets, whichever field was wrong.
const loginErrorMessage = "Please enter a correct username and password."

// AccountHandler handles the HTML account views: signup, login, logout
type AccountHandler struct {
	db         *sqlx.DB
	cache      cache.Cache
	sessionTTL time.Duration
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(db *sqlx.DB, cache cache.Cache, sessionTTL time.Duration) *AccountHandler {
	return &AccountHandler{
		db:         db,
		cache:      cache,
		sessionTTL: sessionTTL,
	}
}

type signupPageData struct {
	Username string
	Email    string
	Errors   FieldErrors
}

type loginPageData struct {
	Username     string
	ErrorMessage string
}

// SignupPage handles GET /accounts/signup/ - render the empty form
func (h *AccountHandler) SignupPage(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Rendering signup form")
	renderPage(ctx, w, http.StatusOK, "signup.html", signupPageData{})
}

// Signup handles POST /accounts/signup/ - validate the form, create the
// user and log it in. Validation failures re-render the form with
// field-level errors and HTTP 200.
func (h *AccountHandler) Signup(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logRequest(ctx, "error", "Invalid form body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	req := models.SignupRequest{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}

	logRequest(ctx, "info", "Signup request", zap.String("username", req.Username))

	fieldErrs := h.validateSignup(ctx, req)
	if len(fieldErrs) > 0 {
		logRequest(ctx, "info", "Signup validation failed", zap.Any("errors", fieldErrs))
		renderPage(ctx, w, http.StatusOK, "signup.html", signupPageData{
			Username: req.Username,
			Email:    req.Email,
			Errors:   fieldErrs,
		})
		return
	}

	user, fieldErrs, err := h.createUser(req)
	if err != nil {
		logRequest(ctx, "error", "Failed to create user", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if len(fieldErrs) > 0 {
		logRequest(ctx, "info", "Signup lost username race", zap.String("username", req.Username))
		renderPage(ctx, w, http.StatusOK, "signup.html", signupPageData{
			Username: req.Username,
			Email:    req.Email,
			Errors:   fieldErrs,
		})
		return
	}

	// Auto-login: the new account is authenticated immediately
	if _, err := EstablishSession(h.cache, w, user, h.sessionTTL); err != nil {
		logRequest(ctx, "error", "Failed to establish session", zap.Error(err), zap.Int("user_id", user.ID))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	logRequest(ctx, "info", "Signup successful", zap.Int("user_id", user.ID))

	http.Redirect(w, r, "/accounts/signup/success/", http.StatusFound)
}

// createUser hashes the password and inserts the account row. The
// availability pre-check in validateSignup races with concurrent signups,
// so a UNIQUE violation on username here is not an internal error: it
// comes back as the same FieldErrors the pre-check would have produced.
func (h *AccountHandler) createUser(req models.SignupRequest) (*models.User, FieldErrors, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password1), bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	result, err := h.db.Exec(
		"INSERT INTO users (username, email, password, is_active, created_at, updated_at) VALUES (?, ?, ?, 1, ?, ?)",
		req.Username, req.Email, string(hashedPassword), now, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			fieldErrs := FieldErrors{}
			fieldErrs.add("username", "A user with that username already exists.")
			return nil, fieldErrs, nil
		}
		return nil, nil, err
	}

	id, _ := result.LastInsertId()

	return &models.User{
		ID:       int(id),
		Username: req.Username,
		Email:    req.Email,
		IsActive: true,
	}, nil, nil
}

// SignupSuccess handles GET /accounts/signup/success/
func (h *AccountHandler) SignupSuccess(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Rendering signup success page")
	renderPage(ctx, w, http.StatusOK, "signup_success.html", nil)
}

func (h *AccountHandler) validateSignup(ctx context.Context, req models.SignupRequest) FieldErrors {
	fieldErrs := FieldErrors{}

	if req.Username == "" {
		fieldErrs.add("username", "This field is required.")
	} else {
		var taken bool
		err := h.db.QueryRow("SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)", req.Username).Scan(&taken)
		if err != nil {
			logRequest(ctx, "error", "Failed to check username", zap.Error(err))
			fieldErrs.add("username", "Unable to verify username availability.")
		} else if taken {
			fieldErrs.add("username", "A user with that username already exists.")
		}
	}

	if req.Email == "" {
		fieldErrs.add("email", "This field is required.")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fieldErrs.add("email", "Enter a valid email address.")
	}

	for _, msg := range validatePassword(req.Username, req.Password1) {
		fieldErrs.add("password1", msg)
	}

	// byte-for-byte comparison; no normalization
	if req.Password1 != req.Password2 {
		fieldErrs.add("password2", "The two password fields didn't match.")
	}

	return fieldErrs
}

// LoginPage handles GET /accounts/login/ - render the empty form
func (h *AccountHandler) LoginPage(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Rendering login form")
	renderPage(ctx, w, http.StatusOK, "login.html", loginPageData{})
}

// Login handles POST /accounts/login/ - authenticate and establish a
// session. Failures re-render the form with one generic message and HTTP
// 200; the response never says which field was wrong.
func (h *AccountHandler) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logRequest(ctx, "error", "Invalid form body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	req := models.LoginRequest{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}

	logRequest(ctx, "info", "Login request", zap.String("username", req.Username))

	user, err := Authenticate(ctx, h.db, req.Username, req.Password)
	if err == ErrInvalidCredentials {
		logRequest(ctx, "info", "Login rejected")
		renderPage(ctx, w, http.StatusOK, "login.html", loginPageData{
			Username:     req.Username,
			ErrorMessage: loginErrorMessage,
		})
		return
	}
	if err != nil {
		logRequest(ctx, "error", "Login failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Server error"))
		return
	}

	if _, err := EstablishSession(h.cache, w, user, h.sessionTTL); err != nil {
		logRequest(ctx, "error", "Failed to establish session", zap.Error(err), zap.Int("user_id", user.ID))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	logRequest(ctx, "info", "Login successful", zap.Int("user_id", user.ID))

	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout handles GET /accounts/logout/ - destroy the session and go home.
// Idempotent: logging out without a session still redirects cleanly.
func (h *AccountHandler) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Logout request")

	DestroySession(h.cache, w, r)

	http.Redirect(w, r, "/", http.StatusFound)
}
