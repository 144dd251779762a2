package identity

import (
	"time"

	"callcenter-platform/internal/rbac"
)

// User is an operator account. Accounts are created via registration or by an
// admin and are never deleted in normal flow; the password hash is the only
// mutable credential material and is excluded from JSON.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         rbac.Role `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
