package querybuilder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseConditionKey(t *testing.T) {
	testCases := []struct {
		key      string
		field    string
		operator comparisonOperator
	}{
		{"expires_at$lt", "expires_at", opLessThan},
		{"expires_at$gt", "expires_at", opGreaterThan},
		{"expires_at$lte", "expires_at", opLessThanOrEqual},
		{"expires_at$gte", "expires_at", opGreaterThanOrEqual},
		{"used_at$is_null", "used_at", opIsNull},
		{"used_at$isNull", "used_at", opIsNull},
		{"used_at$not_null", "used_at", opNotNull},
		{"used_at$notNull", "used_at", opNotNull},
		{"username", "username", opEquals},
		{"username$like", "username", opEquals},
	}
	for _, tc := range testCases {
		field, operator := parseConditionKey(tc.key)
		assert.Equal(t, tc.field, field, "field for %q", tc.key)
		assert.Equal(t, tc.operator, operator, "operator for %q", tc.key)
	}
}

func TestFilterConditionsDropsUnknownFields(t *testing.T) {
	parsed := filterConditions(map[string]any{
		"username": "alice",
		"isAdmin":  true,
	}, []string{"id", "username", "email"}, false)

	assert.Len(t, parsed, 1)
	assert.Equal(t, "username", parsed[0].Column)
	assert.Equal(t, opEquals, parsed[0].Operator)
}

func TestFilterConditionsChecksBaseFieldOfSuffixedKeys(t *testing.T) {
	parsed := filterConditions(map[string]any{
		"expiresAt$lt": time.Now(),
		"secret$lt":    "nope",
	}, []string{"expires_at"}, true)

	assert.Len(t, parsed, 1)
	assert.Equal(t, "expires_at", parsed[0].Column)
	assert.Equal(t, opLessThan, parsed[0].Operator)
}

func TestFilterConditionsWithoutOperatorsTakesKeysVerbatim(t *testing.T) {
	// With suffix parsing disabled the full key must match the allow-list,
	// so "used_at$is_null" never sneaks past an equality-only spec.
	parsed := filterConditions(map[string]any{
		"usedAt$is_null": true,
	}, []string{"used_at"}, false)

	assert.Empty(t, parsed)
}

func TestFilterConditionsSortsByColumn(t *testing.T) {
	parsed := filterConditions(map[string]any{
		"tokenType": "PasswordReset",
		"id":        "x",
		"userId":    "y",
	}, []string{"id", "user_id", "token_type"}, false)

	assert.Len(t, parsed, 3)
	assert.Equal(t, "id", parsed[0].Column)
	assert.Equal(t, "token_type", parsed[1].Column)
	assert.Equal(t, "user_id", parsed[2].Column)
}

func TestWhereClauseNumbersParams(t *testing.T) {
	where, values := whereClause([]condition{
		{Column: "token_type", Operator: opEquals, Value: "PasswordReset"},
		{Column: "user_id", Operator: opEquals, Value: "abc"},
	}, 3)

	assert.Equal(t, "token_type = $3 AND user_id = $4", where)
	assert.Equal(t, []any{"PasswordReset", "abc"}, values)
}

func TestWhereClauseNullChecksBindNoValue(t *testing.T) {
	cutoff := time.Now()
	where, values := whereClause([]condition{
		{Column: "expires_at", Operator: opLessThan, Value: cutoff},
		{Column: "used_at", Operator: opIsNull, Value: true},
		{Column: "user_id", Operator: opEquals, Value: "abc"},
	}, 1)

	// The IS NULL clause consumes no placeholder, so user_id must bind $2.
	assert.Equal(t, "expires_at < $1 AND used_at IS NULL AND user_id = $2", where)
	assert.Equal(t, []any{cutoff, "abc"}, values)
}

func TestWhereClauseNotNull(t *testing.T) {
	where, values := whereClause([]condition{
		{Column: "used_at", Operator: opNotNull, Value: true},
	}, 1)

	assert.Equal(t, "used_at IS NOT NULL", where)
	assert.Empty(t, values)
}
