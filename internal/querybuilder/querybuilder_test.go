package querybuilder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUserSpec = GetSpec{
	Table:             "users",
	AllowedFields:     []string{"id", "username", "email"},
	AllowedConditions: []string{"id", "username", "email"},
}

func newBuilder(t *testing.T) (*Builder, pgxmock.PgxPoolIface) {
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(poolMock.Close)
	return New(poolMock, time.Second), poolMock
}

func TestCreateInsertsAllowedColumnsOnly(t *testing.T) {
	builder, poolMock := newBuilder(t)
	id := uuid.New()
	spec := CreateSpec{
		Table:     "users",
		Columns:   []string{"username", "email", "hash"},
		Returning: []string{"id", "username"},
		NewID:     func() any { return id },
	}

	poolMock.ExpectQuery(`INSERT INTO users \(id, email, hash, username\) VALUES \(\$1, \$2, \$3, \$4\) RETURNING id, username`).
		WithArgs(id, "alice@example.com", "hashvalue", "alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username"}).AddRow(id, "alice"))

	created, err := builder.Create(context.Background(), spec, map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"hash":     "hashvalue",
		"isAdmin":  true, // not in the allow-list, must be dropped
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", created["username"])
	assert.Equal(t, id, created["id"])
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCreateRejectsFullyFilteredData(t *testing.T) {
	builder, _ := newBuilder(t)
	spec := CreateSpec{Table: "users", Columns: []string{"username"}}

	_, err := builder.Create(context.Background(), spec, map[string]any{"isAdmin": true})
	assert.ErrorIs(t, err, ErrNoValidColumns)
}

func TestGetReturnsNilForMissingRow(t *testing.T) {
	builder, poolMock := newBuilder(t)

	poolMock.ExpectQuery(`SELECT id FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	row, err := builder.Get(context.Background(), testUserSpec, map[string]any{"username": "ghost"}, "id")
	require.NoError(t, err)
	assert.Nil(t, row)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestGetTranslatesKeysBothWays(t *testing.T) {
	builder, poolMock := newBuilder(t)
	spec := GetSpec{
		Table:             "users",
		AllowedFields:     []string{"id", "email_verified"},
		AllowedConditions: []string{"id"},
	}
	id := uuid.New()

	poolMock.ExpectQuery(`SELECT email_verified, id FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"email_verified", "id"}).AddRow(true, id))

	row, err := builder.Get(context.Background(), spec, map[string]any{"id": id}, "emailVerified", "id")
	require.NoError(t, err)
	assert.Equal(t, true, row["emailVerified"])
	assert.Equal(t, id, row["id"])
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestGetRejectsUnknownConditions(t *testing.T) {
	builder, _ := newBuilder(t)

	_, err := builder.Get(context.Background(), testUserSpec, map[string]any{"role": "admin"}, "id")
	assert.ErrorIs(t, err, ErrNoValidConditions)
}

func TestGetWildcardProjection(t *testing.T) {
	builder, poolMock := newBuilder(t)
	spec := GetSpec{
		Table:             "users",
		AllowedFields:     []string{"*"},
		AllowedConditions: []string{"id"},
	}
	id := uuid.New()

	poolMock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username"}).AddRow(id, "alice"))

	row, err := builder.Get(context.Background(), spec, map[string]any{"id": id})
	require.NoError(t, err)
	assert.Equal(t, "alice", row["username"])
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestUpdateSupportsConditionalSingleUse(t *testing.T) {
	builder, poolMock := newBuilder(t)
	spec := UpdateSpec{
		Table:             "tokens",
		AllowedFields:     []string{"used_at"},
		AllowedConditions: []string{"id", "used_at"},
		Returning:         []string{"id"},
	}
	id := uuid.New()
	usedAt := time.Now()

	poolMock.ExpectQuery(`UPDATE tokens SET used_at = \$1 WHERE id = \$2 AND used_at IS NULL RETURNING id`).
		WithArgs(usedAt, id).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

	row, err := builder.Update(context.Background(), spec,
		map[string]any{"id": id, "usedAt$is_null": true},
		map[string]any{"usedAt": usedAt},
	)
	require.NoError(t, err)
	assert.Equal(t, id, row["id"])
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestUpdateReturnsNilWhenNothingMatched(t *testing.T) {
	builder, poolMock := newBuilder(t)
	spec := UpdateSpec{
		Table:             "users",
		AllowedFields:     []string{"hash"},
		AllowedConditions: []string{"id"},
		Returning:         []string{"id"},
	}
	id := uuid.New()

	poolMock.ExpectQuery(`UPDATE users SET hash = \$1 WHERE id = \$2 RETURNING id`).
		WithArgs("newhash", id).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	row, err := builder.Update(context.Background(), spec,
		map[string]any{"id": id},
		map[string]any{"hash": "newhash"},
	)
	require.NoError(t, err)
	assert.Nil(t, row)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestUpdateRejectsFullyFilteredData(t *testing.T) {
	builder, _ := newBuilder(t)
	spec := UpdateSpec{
		Table:             "users",
		AllowedFields:     []string{"hash"},
		AllowedConditions: []string{"id"},
	}

	_, err := builder.Update(context.Background(), spec,
		map[string]any{"id": uuid.New()},
		map[string]any{"emailVerified": true},
	)
	assert.ErrorIs(t, err, ErrNoValidFields)
}

func TestDeleteReturnsAffectedRows(t *testing.T) {
	builder, poolMock := newBuilder(t)
	spec := DeleteSpec{Table: "tokens", AllowedConditions: []string{"user_id", "token_type"}}
	userID := uuid.New()

	poolMock.ExpectExec(`DELETE FROM tokens WHERE token_type = \$1 AND user_id = \$2`).
		WithArgs("PasswordReset", userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	affected, err := builder.Delete(context.Background(), spec, map[string]any{
		"userId":    userID,
		"tokenType": "PasswordReset",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestDeleteBulkWithComparisonSuffix(t *testing.T) {
	builder, poolMock := newBuilder(t)
	spec := DeleteSpec{Table: "tokens", AllowedConditions: []string{"expires_at", "used_at"}}
	cutoff := time.Now()

	poolMock.ExpectExec(`DELETE FROM tokens WHERE expires_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))

	affected, err := builder.DeleteBulk(context.Background(), spec, map[string]any{"expiresAt$lt": cutoff})
	require.NoError(t, err)
	assert.Equal(t, int64(5), affected)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestDeleteBulkNullCheckBindsNoParams(t *testing.T) {
	builder, poolMock := newBuilder(t)
	spec := DeleteSpec{Table: "tokens", AllowedConditions: []string{"used_at"}}

	poolMock.ExpectExec(`DELETE FROM tokens WHERE used_at IS NOT NULL`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	affected, err := builder.DeleteBulk(context.Background(), spec, map[string]any{"usedAt$not_null": true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestWrapsUniqueViolations(t *testing.T) {
	builder, poolMock := newBuilder(t)
	spec := CreateSpec{
		Table:   "users",
		Columns: []string{"username", "email", "hash"},
	}

	poolMock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := builder.Create(context.Background(), spec, map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"hash":     "hashvalue",
	})
	require.Error(t, err)

	var dbErr *DatabaseError
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, "users", dbErr.Table)
	assert.Equal(t, OperationCreate, dbErr.Operation)
	assert.True(t, IsUniqueViolation(err))
	assert.Equal(t, "users_username_key", ConstraintName(err))
}

func TestOtherFaultsAreNotUniqueViolations(t *testing.T) {
	err := wrapError("users", OperationGet, errors.New("connection refused"))
	assert.False(t, IsUniqueViolation(err))
	assert.Equal(t, "", ConstraintName(err))
}
