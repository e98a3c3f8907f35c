// Package schemas defines the data structures shared across the application.
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// User represents the data model for a user in the system. The password
// hash is never serialized and is only populated by read paths that are
// explicitly "with hash".
type User struct {
	ID            uuid.UUID  `json:"id"`
	FirstName     *string    `json:"firstName"`
	LastName      *string    `json:"lastName"`
	Username      string     `json:"username"`
	Email         string     `json:"email,omitempty"`
	Hash          string     `json:"-"`
	EmailVerified bool       `json:"emailVerified"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// Token represents a single-use, expiring token bridging an email side
// channel to a state change (email verification, password reset).
type Token struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	TokenType string     `json:"tokenType"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}
