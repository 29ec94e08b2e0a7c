package auth

import (
	"strconv"
	"time"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	CenterID     *int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LoginResult carries everything a client needs after a successful login.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      int64     `json:"user_id"`
	CenterID    *int64    `json:"center_id,omitempty"`
	Roles       []string  `json:"roles"`
	CSRFToken   string    `json:"csrf_token,omitempty"`
}

// UserIDString returns the user id in claim form.
func (r LoginResult) UserIDString() string {
	return strconv.FormatInt(r.UserID, 10)
}
