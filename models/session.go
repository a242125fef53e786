package models

// Session is the cached payload behind a session cookie. It stores only
// identity fields, never credentials or auth state.
type Session struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
