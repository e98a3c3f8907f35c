package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server-identity/internal/schemas"
)

func TestSanitizeDataStripsMarkup(t *testing.T) {
	v := GetValidator()

	req := schemas.RegistrationRequest{
		FirstName: "<script>alert(1)</script>John",
		Username:  "john",
		Email:     "john@example.com",
	}
	require.NoError(t, v.SanitizeData(&req))

	assert.Equal(t, "John", req.FirstName)
	assert.Equal(t, "john", req.Username)
}

func TestCustomUsernameValidation(t *testing.T) {
	v := GetValidator()

	type payload struct {
		Username string `validate:"username_validation"`
	}

	assert.NoError(t, v.Validate.Struct(payload{Username: "john.doe"}))
	assert.Error(t, v.Validate.Struct(payload{Username: ".john"}))
	assert.Error(t, v.Validate.Struct(payload{Username: "jo"}))
}

func TestCustomPasswordValidation(t *testing.T) {
	v := GetValidator()

	type payload struct {
		Password string `validate:"password_validation"`
	}

	assert.NoError(t, v.Validate.Struct(payload{Password: "Str0ng!Passw"}))
	assert.Error(t, v.Validate.Struct(payload{Password: "weakpassword"}))
}

func TestRegistrationRequestRunsCustomTags(t *testing.T) {
	v := GetValidator()

	err := v.Validate.Struct(schemas.RegistrationRequest{
		Username: ".john",
		Email:    "john@example.com",
		ReqPass:  "weak",
		ConPass:  "weak",
	})
	require.Error(t, err)

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	failedTags := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		failedTags[fieldErr.Field()] = fieldErr.Tag()
	}
	assert.Equal(t, "username_validation", failedTags["Username"])
	assert.Equal(t, "password_validation", failedTags["ReqPass"])

	assert.NoError(t, v.Validate.Struct(schemas.RegistrationRequest{
		Username: "john",
		Email:    "john@example.com",
		ReqPass:  "Str0ng!Passw",
		ConPass:  "Str0ng!Passw",
	}))
}

func TestRequiredTagsOnRequests(t *testing.T) {
	v := GetValidator()

	err := v.Validate.Struct(schemas.LoginRequest{})
	assert.Error(t, err, "identifier and password are required")

	err = v.Validate.Struct(schemas.LoginRequest{Identifier: "john", Password: "pw"})
	assert.NoError(t, err)
}
