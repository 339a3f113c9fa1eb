package entity

import "time"

// Token is a session credential issued on login.
// RefreshToken holds the bearer value presented in the Authorization header.
type Token struct {
	ID           string
	UserID       string
	RefreshToken string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	UserAgent    string
}

// Expired reports whether the token is past its expiry at now.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
