package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"server-identity/internal/querybuilder"
	"server-identity/internal/schemas"
)

const tokensTable = "tokens"

var createTokenSpec = querybuilder.CreateSpec{
	Table:     tokensTable,
	Columns:   []string{"user_id", "token_type", "token", "expires_at"},
	Returning: []string{"id", "user_id", "token_type", "token", "expires_at"},
	NewID:     func() any { return uuid.New() },
}

var getTokenSpec = querybuilder.GetSpec{
	Table:             tokensTable,
	AllowedFields:     []string{"id", "user_id", "token_type", "token", "expires_at", "created_at", "used_at"},
	AllowedConditions: []string{"id", "user_id", "token_type", "token"},
}

var updateTokenSpec = querybuilder.UpdateSpec{
	Table:             tokensTable,
	AllowedFields:     []string{"token", "expires_at", "used_at"},
	AllowedConditions: []string{"id", "user_id", "token_type", "used_at"},
	Returning:         []string{"id", "user_id", "updated_at"},
}

var deleteTokenSpec = querybuilder.DeleteSpec{
	Table:             tokensTable,
	AllowedConditions: []string{"id", "user_id", "token_type"},
}

var deleteBulkTokensSpec = querybuilder.DeleteSpec{
	Table:             tokensTable,
	AllowedConditions: []string{"expires_at", "used_at"},
}

// TokenRepository reads and writes single-use token records.
type TokenRepository struct {
	builder *querybuilder.Builder
}

func NewTokenRepository(builder *querybuilder.Builder) *TokenRepository {
	return &TokenRepository{builder: builder}
}

// Create persists a new token row for the user.
func (r *TokenRepository) Create(ctx context.Context, userID uuid.UUID, tokenType, token string, expiresAt time.Time) (*schemas.Token, error) {
	row, err := r.builder.Create(ctx, createTokenSpec, map[string]any{
		"userId":    userID,
		"tokenType": tokenType,
		"token":     token,
		"expiresAt": expiresAt,
	})
	if err != nil {
		return nil, err
	}
	return rowToToken(row), nil
}

// GetByValue looks a token up by its exact value and type. A missing token
// is (nil, nil).
func (r *TokenRepository) GetByValue(ctx context.Context, token, tokenType string) (*schemas.Token, error) {
	row, err := r.builder.Get(ctx, getTokenSpec, map[string]any{
		"token":     token,
		"tokenType": tokenType,
	})
	if err != nil || row == nil {
		return nil, err
	}
	return rowToToken(row), nil
}

// MarkUsed stamps the token as consumed, but only when it has not been
// consumed already. The usedAt IS NULL condition makes two concurrent
// consume attempts resolve to exactly one success.
func (r *TokenRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	row, err := r.builder.Update(ctx, updateTokenSpec,
		map[string]any{"id": id, "usedAt$is_null": true},
		map[string]any{"usedAt": usedAt},
	)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// DeleteForUser removes every token of the given type a user holds, so a
// re-issued token invalidates its predecessors.
func (r *TokenRepository) DeleteForUser(ctx context.Context, userID uuid.UUID, tokenType string) (int64, error) {
	return r.builder.Delete(ctx, deleteTokenSpec, map[string]any{
		"userId":    userID,
		"tokenType": tokenType,
	})
}

// DeleteExpired removes every token whose expiry lies before the cutoff.
func (r *TokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.builder.DeleteBulk(ctx, deleteBulkTokensSpec, map[string]any{
		"expiresAt$lt": cutoff,
	})
}

// DeleteUsed removes every token that has already been consumed.
func (r *TokenRepository) DeleteUsed(ctx context.Context) (int64, error) {
	return r.builder.DeleteBulk(ctx, deleteBulkTokensSpec, map[string]any{
		"usedAt$not_null": true,
	})
}

func rowToToken(row map[string]any) *schemas.Token {
	return &schemas.Token{
		ID:        asUUID(row["id"]),
		UserID:    asUUID(row["userId"]),
		TokenType: asString(row["tokenType"]),
		Token:     asString(row["token"]),
		ExpiresAt: asTime(row["expiresAt"]),
		CreatedAt: asTimePtr(row["createdAt"]),
		UsedAt:    asTimePtr(row["usedAt"]),
	}
}
