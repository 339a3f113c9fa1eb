package entity

import (
	"strings"
	"time"
)

// UserType is the account tier of a user.
type UserType string

const (
	UserTypeUsual UserType = "usual"
	UserTypePro   UserType = "pro"
)

// Valid reports whether t is a known account tier.
func (t UserType) Valid() bool {
	return t == UserTypeUsual || t == UserTypePro
}

// NormalizeEmail is the stored form of an email: trimmed and lowercased,
// so uniqueness does not depend on case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User is the aggregate root for user domain
// Passwords are stored as bcrypt hashes in PasswordHash
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Avatar       string
	Type         UserType
	Favorites    []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasFavorite reports whether offerID is in the user's favorites.
func (u *User) HasFavorite(offerID string) bool {
	if u == nil {
		return false
	}
	for _, id := range u.Favorites {
		if id == offerID {
			return true
		}
	}
	return false
}
