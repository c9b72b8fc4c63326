package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrPasswordMismatch = errors.New("passwords don't match")
	ErrInvalidToken     = errors.New("invalid token")
	ErrRefreshExpired   = errors.New("refresh token expired")
	ErrUserNotFound     = errors.New("user not found")
)

// User is the profile stored at users/{uid}. IsTempAccount marks a
// placeholder created to receive shared tasks before the person signs up.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"created_at"`
	IsTempAccount bool      `json:"is_temp_account,omitempty"`
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PlaceholderID derives the document id of a placeholder profile.
func PlaceholderID(email string) string {
	return strings.NewReplacer(".", "_", "@", "_").Replace(NormalizeEmail(email))
}
