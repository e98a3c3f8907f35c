package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnake(t *testing.T) {
	testCases := map[string]string{
		"id":            "id",
		"firstName":     "first_name",
		"emailVerified": "email_verified",
		"expiresAt":     "expires_at",
		"username":      "username",
	}
	for input, expected := range testCases {
		assert.Equal(t, expected, ToSnake(input))
	}
}

func TestToCamel(t *testing.T) {
	testCases := map[string]string{
		"id":             "id",
		"first_name":     "firstName",
		"email_verified": "emailVerified",
		"created_at":     "createdAt",
		"token":          "token",
	}
	for input, expected := range testCases {
		assert.Equal(t, expected, ToCamel(input))
	}
}

func TestNamingRoundTrip(t *testing.T) {
	keys := []string{"id", "firstName", "lastName", "username", "email", "emailVerified", "createdAt", "updatedAt", "userId", "tokenType", "expiresAt", "usedAt"}
	for _, key := range keys {
		assert.Equal(t, key, ToCamel(ToSnake(key)), "round trip should be lossless for %q", key)
	}
}
