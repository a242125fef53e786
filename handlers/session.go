package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"bookstore/models"

	"github.com/google/uuid" // For session IDs
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/cache"
	"golang.org/x/crypto/bcrypt" // For pw verify
)

// Sessions live in the cache under an opaque token carried by an
// httpOnly cookie. The token itself is the only client-held state.

const (
	sessionKeyPrefix  = "session:"
	sessionCookieName = "session_id"

	bcryptCost = 12
)

// ErrInvalidCredentials is the single failure for every bad login,
// whatever actually went wrong (unknown user, wrong password, inactive).
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the username does not exist, so the
// unknown-user path costs the same as a real password check.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-user"), bcryptCost)

// genSessionID generates a unique session token for cookies
func genSessionID() string {
	return uuid.New().String()
}

// Authenticate looks up the user by username and verifies the password
// against the stored bcrypt hash (constant-time). Returns the active user
// or ErrInvalidCredentials; it never distinguishes which check failed.
func Authenticate(ctx context.Context, db *sqlx.DB, username, password string) (*models.User, error) {
	var user models.User
	err := db.QueryRowContext(ctx,
		"SELECT id, username, email, password, is_active FROM users WHERE username = ?", username).
		Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.IsActive)
	if err == sql.ErrNoRows {
		// burn a compare anyway; hide whether the user exists
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// EstablishSession stores a session for the user in the cache and sets the
// session cookie. Returns the opaque token.
func EstablishSession(c cache.Cache, w http.ResponseWriter, user *models.User, ttl time.Duration) (string, error) {
	sessionID := genSessionID()

	data, err := json.Marshal(models.Session{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		return "", err
	}

	if err := c.Set(sessionKeyPrefix+sessionID, data, ttl); err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,  // Prevent JS access for security
		Secure:   false, // True in prod HTTPS
		MaxAge:   int(ttl / time.Second),
	})

	return sessionID, nil
}

// DestroySession invalidates the current session, if any, and clears the
// cookie. Idempotent: calling it without a session is not an error.
func DestroySession(c cache.Cache, w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		c.Delete(sessionKeyPrefix + cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// CurrentUser resolves the request's session cookie to the logged-in user,
// or reports false for guests, expired sessions and garbage cookies.
func CurrentUser(r *http.Request, c cache.Cache) (*models.Session, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, false
	}

	cached, err := c.Get(sessionKeyPrefix + cookie.Value)
	if err != nil {
		return nil, false
	}

	data, ok := cacheBytes(cached)
	if !ok {
		return nil, false
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false
	}

	return &session, true
}
