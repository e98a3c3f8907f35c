package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"server-identity/internal/repositories"
)

// TokenType distinguishes what a single-use token authorizes.
type TokenType string

const (
	EmailVerification TokenType = "EmailVerification"
	PasswordReset     TokenType = "PasswordReset"
)

// tokenBytes is the entropy of a token value: 32 random bytes, hex-encoded
// to 64 characters.
const tokenBytes = 32

// TokenStore issues and consumes single-use, expiring opaque tokens. Expiry
// and used-state are tracked in storage; the consume step is atomically
// single-use.
type TokenStore struct {
	tokens *repositories.TokenRepository
	clock  Clock
	ttl    time.Duration
}

// NewTokenStore constructs a store. A non-positive ttl falls back to one
// hour.
func NewTokenStore(tokens *repositories.TokenRepository, clock Clock, ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenStore{tokens: tokens, clock: clock, ttl: ttl}
}

// Issue generates a fresh high-entropy token for the user, replacing any
// outstanding token of the same type, and returns the opaque value for
// delivery to the user.
func (s *TokenStore) Issue(ctx context.Context, userID uuid.UUID, tokenType TokenType) (string, error) {
	value, err := generateTokenValue()
	if err != nil {
		return "", err
	}

	if _, err := s.tokens.DeleteForUser(ctx, userID, string(tokenType)); err != nil {
		return "", err
	}

	expiresAt := s.clock.Now().Add(s.ttl)
	if _, err := s.tokens.Create(ctx, userID, string(tokenType), value, expiresAt); err != nil {
		return "", err
	}
	return value, nil
}

// Consume looks the token up by exact value and type, validates it and
// marks it used. It returns the owning user's id. A token that is absent or
// already consumed fails with ErrTokenInvalid; one past its expiry fails
// with ErrTokenExpired. Two concurrent consume attempts on the same token
// resolve to exactly one success because the mark-used update only matches
// rows whose used_at is still null.
func (s *TokenStore) Consume(ctx context.Context, value string, tokenType TokenType) (uuid.UUID, error) {
	record, err := s.tokens.GetByValue(ctx, value, string(tokenType))
	if err != nil {
		return uuid.Nil, err
	}
	if record == nil || record.UsedAt != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	if s.clock.Now().After(record.ExpiresAt) {
		return uuid.Nil, ErrTokenExpired
	}

	used, err := s.tokens.MarkUsed(ctx, record.ID, s.clock.Now())
	if err != nil {
		return uuid.Nil, err
	}
	if !used {
		// Lost the race against a concurrent consume.
		return uuid.Nil, ErrTokenInvalid
	}
	return record.UserID, nil
}

func generateTokenValue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
