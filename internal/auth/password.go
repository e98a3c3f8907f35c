package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when a login targets an unknown identifier,
// so that the response latency does not reveal whether the account exists.
// Removing this comparison reintroduces a timing side channel.
const dummyHash = "$2b$10$abcdefghijklmnopqrstuvwxyz01234567890ABCDEFGHIJKLMN"

// PasswordHasher hashes and verifies passwords with bcrypt. The cost factor
// comes from configuration and is fixed for the process lifetime.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher constructs a hasher. Costs outside bcrypt's supported
// range fall back to the library default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash derives a salted, fixed-width hash of the plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the plaintext matches the hash. bcrypt's own
// comparison is constant-time with respect to correctness.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// CheckPasswordsMatch compares the chosen password with its confirmation
// after trimming both. The strength rules apply to the chosen password only
// and are checked separately, after this.
func CheckPasswordsMatch(chosen, confirmation string) error {
	if strings.TrimSpace(chosen) != strings.TrimSpace(confirmation) {
		return &ValidationError{Field: "password", Failed: []string{"PasswordMismatch"}}
	}
	return nil
}

// HandlePassword runs the full password intake: confirmation match, strength
// validation, then hashing. It returns the hash of the trimmed password.
func (h *PasswordHasher) HandlePassword(chosen, confirmation string) (string, error) {
	if err := CheckPasswordsMatch(chosen, confirmation); err != nil {
		return "", err
	}
	chosen = strings.TrimSpace(chosen)
	if err := ValidateFields(PasswordConstraints, "password", chosen); err != nil {
		return "", err
	}
	return h.Hash(chosen)
}
