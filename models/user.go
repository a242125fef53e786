package models

import "time"

// User represents an account in the system
// Password is stored hashed (bcrypt); never return plain in JSON responses
type User struct {
	ID        int       `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"` // Hashed; omitted from JSON
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Group is a named permission group users can belong to (user_groups table).
type Group struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Permission is an individual permission grantable to a user directly
// (user_permissions table) or through group membership.
type Permission struct {
	ID       int    `json:"id" db:"id"`
	Codename string `json:"codename" db:"codename"`
	Name     string `json:"name" db:"name"`
}

// SignupRequest carries the signup form fields. Password1/Password2 are
// plaintext copies of the chosen password; they are hashed before storage.
type SignupRequest struct {
	Username  string
	Email     string
	Password1 string
	Password2 string
}

// LoginRequest carries the login form fields.
type LoginRequest struct {
	Username string
	Password string
}
