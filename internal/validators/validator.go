// Package validators holds the process-wide request validator: struct
// validation via go-playground/validator, HTML stripping via bluemonday
// and deliverability checks via truemail.
package validators

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/truemail-rb/truemail-go"

	"server-identity/internal/auth"
)

type Validator struct {
	Validate     *validator.Validate
	SanitizeData func(data interface{}) error
	VerifyEmail  func(email string) bool
}

var (
	once          sync.Once
	instance      *Validator
	configuration *truemail.Configuration
	policy        *bluemonday.Policy
)

// GetValidator returns the process-wide validator instance.
func GetValidator() *Validator {
	once.Do(func() {
		configuration, _ = truemail.NewConfiguration(truemail.ConfigurationAttr{
			VerifierEmail:         "team@server-identity.dev",
			ValidationTypeDefault: "mx",
			SmtpFailFast:          true,
		})
		policy = bluemonday.StrictPolicy()

		instance = &Validator{
			Validate:     validator.New(validator.WithRequiredStructEnabled()),
			SanitizeData: sanitizeData,
			VerifyEmail:  verifyEmail,
		}
		registerCustomValidators(instance.Validate)
	})

	return instance
}

func verifyEmail(email string) bool {
	return truemail.IsValid(email, configuration)
}

// sanitizeData strips HTML from every settable string field of the struct
// pointed to by data.
func sanitizeData(data interface{}) error {
	value := reflect.ValueOf(data)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return nil
	}

	value = value.Elem()
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if field.Kind() == reflect.String && field.CanSet() {
			field.SetString(policy.Sanitize(field.String()))
		}
	}
	return nil
}

func registerCustomValidators(v *validator.Validate) {
	if err := v.RegisterValidation("username_validation", usernameValidation); err != nil {
		return
	}
	if err := v.RegisterValidation("password_validation", passwordValidation); err != nil {
		return
	}
}

// usernameValidation and passwordValidation delegate to the constraint
// tables, so tag-level validation and the policy errors returned by the
// auth flows can never disagree.
func usernameValidation(fl validator.FieldLevel) bool {
	return auth.ValidateFields(auth.UsernameConstraints, "username", fl.Field().String()) == nil
}

func passwordValidation(fl validator.FieldLevel) bool {
	return auth.ValidateFields(auth.PasswordConstraints, "password", fl.Field().String()) == nil
}
