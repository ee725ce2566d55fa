package domain

import (
	"strings"
	"time"
)

// MaxUsernameLength bounds the login handle; it matches the users.username column width.
const MaxUsernameLength = 80

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeUsername trims surrounding whitespace. Matching stays case-sensitive.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
