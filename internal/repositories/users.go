// Package repositories provides the strongly-typed, allow-listed access
// layer for the users and tokens tables. Each repository is a static set of
// query-builder specs; caller input only ever selects among permitted
// columns, it never reaches the SQL text.
package repositories

import (
	"context"

	"github.com/google/uuid"

	"server-identity/internal/querybuilder"
	"server-identity/internal/schemas"
)

const usersTable = "users"

var createUserSpec = querybuilder.CreateSpec{
	Table:     usersTable,
	Columns:   []string{"first_name", "last_name", "username", "email", "hash"},
	Returning: []string{"id", "first_name", "last_name", "username", "email", "email_verified", "created_at", "updated_at"},
	NewID:     newUserID,
}

var getUserSpec = querybuilder.GetSpec{
	Table:             usersTable,
	AllowedFields:     []string{"id", "first_name", "last_name", "username", "email", "email_verified", "created_at", "updated_at"},
	AllowedConditions: []string{"id", "username", "email"},
}

var getPublicUserSpec = querybuilder.GetSpec{
	Table:             usersTable,
	AllowedFields:     []string{"id", "first_name", "last_name", "username", "email_verified", "created_at"},
	AllowedConditions: []string{"id", "username"},
}

var getUserWithHashSpec = querybuilder.GetSpec{
	Table:             usersTable,
	AllowedFields:     []string{"id", "hash"},
	AllowedConditions: []string{"username", "email"},
}

var updateUserSpec = querybuilder.UpdateSpec{
	Table:             usersTable,
	AllowedFields:     []string{"first_name", "last_name", "username", "email", "hash", "email_verified"},
	AllowedConditions: []string{"id"},
	Returning:         []string{"id", "updated_at"},
}

var deleteUserSpec = querybuilder.DeleteSpec{
	Table:             usersTable,
	AllowedConditions: []string{"id"},
}

// newUserID generates a time-ordered identifier so user rows sort by
// creation time.
func newUserID() any {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// UserRepository reads and writes user records.
type UserRepository struct {
	builder *querybuilder.Builder
}

func NewUserRepository(builder *querybuilder.Builder) *UserRepository {
	return &UserRepository{builder: builder}
}

// CreateUserParams carries the insertable user fields. Optional names stay
// nil when absent.
type CreateUserParams struct {
	FirstName *string
	LastName  *string
	Username  string
	Email     string
	Hash      string
}

// Create inserts a new user and returns its full projection.
func (r *UserRepository) Create(ctx context.Context, params CreateUserParams) (*schemas.User, error) {
	row, err := r.builder.Create(ctx, createUserSpec, map[string]any{
		"firstName": params.FirstName,
		"lastName":  params.LastName,
		"username":  params.Username,
		"email":     params.Email,
		"hash":      params.Hash,
	})
	if err != nil {
		return nil, err
	}
	return rowToUser(row), nil
}

// Get returns the first user matching the equality conditions, narrowed to
// fields when given. A missing user is (nil, nil).
func (r *UserRepository) Get(ctx context.Context, conditions map[string]any, fields ...string) (*schemas.User, error) {
	row, err := r.builder.Get(ctx, getUserSpec, conditions, fields...)
	if err != nil || row == nil {
		return nil, err
	}
	return rowToUser(row), nil
}

// GetPublic returns the public projection of the named user, which omits
// the email address.
func (r *UserRepository) GetPublic(ctx context.Context, username string) (*schemas.User, error) {
	row, err := r.builder.Get(ctx, getPublicUserSpec, map[string]any{"username": username})
	if err != nil || row == nil {
		return nil, err
	}
	return rowToUser(row), nil
}

// GetWithHash returns the id and password hash of the user matching the
// conditions. This is the only read path that surfaces the hash.
func (r *UserRepository) GetWithHash(ctx context.Context, conditions map[string]any) (*schemas.User, error) {
	row, err := r.builder.Get(ctx, getUserWithHashSpec, conditions)
	if err != nil || row == nil {
		return nil, err
	}
	return rowToUser(row), nil
}

// Update applies the allow-listed subset of data to the user and returns
// the restricted projection (id, updatedAt), or nil when no row matched.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, data map[string]any) (*schemas.User, error) {
	row, err := r.builder.Update(ctx, updateUserSpec, map[string]any{"id": id}, data)
	if err != nil || row == nil {
		return nil, err
	}
	return rowToUser(row), nil
}

// Delete removes the user row. Token rows cascade with it.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.builder.Delete(ctx, deleteUserSpec, map[string]any{"id": id})
}

func rowToUser(row map[string]any) *schemas.User {
	user := &schemas.User{
		ID:            asUUID(row["id"]),
		FirstName:     asStringPtr(row["firstName"]),
		LastName:      asStringPtr(row["lastName"]),
		Username:      asString(row["username"]),
		Email:         asString(row["email"]),
		EmailVerified: asBool(row["emailVerified"]),
		CreatedAt:     asTimePtr(row["createdAt"]),
		UpdatedAt:     asTimePtr(row["updatedAt"]),
	}
	if hash, ok := row["hash"]; ok {
		user.Hash = asString(hash)
	}
	return user
}
