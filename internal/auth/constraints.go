package auth

import "regexp"

// Constraint is a single named validation rule. The name is what failure
// reports carry, so it must stay stable.
type Constraint struct {
	Name    string
	Pattern *regexp.Regexp
}

// UsernameConstraints: 3-30 characters from [a-zA-Z0-9._-], not starting or
// ending with '.', '_' or '-'.
var UsernameConstraints = []Constraint{
	{Name: "UsernameFormat", Pattern: regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)},
	{Name: "UsernameEnds", Pattern: regexp.MustCompile(`^[^._-].*[^._-]$`)},
	{Name: "UsernameLength", Pattern: regexp.MustCompile(`^.{3,30}$`)},
}

// EmailConstraints: local@domain.tld shape with a TLD of at least two
// letters, no whitespace, at most 320 characters.
var EmailConstraints = []Constraint{
	{Name: "EmailFormat", Pattern: regexp.MustCompile(`^[a-zA-Z0-9._+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)},
	{Name: "EmailSpaces", Pattern: regexp.MustCompile(`^\S+$`)},
	{Name: "EmailLength", Pattern: regexp.MustCompile(`^.{1,320}$`)},
}

// PasswordConstraints: at least 12 characters with a lowercase letter, an
// uppercase letter, a digit and a special character.
var PasswordConstraints = []Constraint{
	{Name: "PassLower", Pattern: regexp.MustCompile(`[a-z]`)},
	{Name: "PassUpper", Pattern: regexp.MustCompile(`[A-Z]`)},
	{Name: "PassNumber", Pattern: regexp.MustCompile(`[0-9]`)},
	{Name: "PassSpecial", Pattern: regexp.MustCompile(`[!@#$%^&*]`)},
	{Name: "PassLength", Pattern: regexp.MustCompile(`.{12,}`)},
}

// ValidateFields evaluates every constraint against the value and collects
// all failing rule names into a single ValidationError.
func ValidateFields(constraints []Constraint, field, value string) error {
	var failed []string
	for _, constraint := range constraints {
		if !constraint.Pattern.MatchString(value) {
			failed = append(failed, constraint.Name)
		}
	}
	if len(failed) > 0 {
		return &ValidationError{Field: field, Failed: failed}
	}
	return nil
}
