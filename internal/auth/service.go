// Package auth implements the credential and token lifecycle: registration,
// login, email verification, password reset and refresh-token rotation.
// The Service is the only place with business-flow logic; storage access
// goes through the allow-listed repositories and all side effects run on
// the background queue.
package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"server-identity/internal/jobs"
	"server-identity/internal/managers"
	"server-identity/internal/querybuilder"
	"server-identity/internal/repositories"
	"server-identity/internal/schemas"
)

// Service composes the credential policy, the repositories, the token
// signer, the ephemeral token store and the email dispatcher into the
// authentication flows.
type Service struct {
	users      *repositories.UserRepository
	store      *TokenStore
	jwt        managers.JWTMgr
	dispatcher jobs.Dispatcher
	hasher     *PasswordHasher
}

// NewService constructs the orchestrator.
func NewService(users *repositories.UserRepository, store *TokenStore, jwt managers.JWTMgr, dispatcher jobs.Dispatcher, hasher *PasswordHasher) *Service {
	return &Service{
		users:      users,
		store:      store,
		jwt:        jwt,
		dispatcher: dispatcher,
		hasher:     hasher,
	}
}

// RegistrationInput carries the raw registration fields. ReqPass is the
// chosen password, ConPass its confirmation.
type RegistrationInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	ReqPass   string
	ConPass   string
}

// Result is returned by the flows that authenticate a user. The refresh
// token is handed to the transport layer for cookie delivery.
type Result struct {
	User         *schemas.User
	AccessToken  string
	RefreshToken string
}

// Register creates a new account and signs the user in. A verification
// email is dispatched fire-and-forget: neither token issuance nor delivery
// failures fail the registration. The uniqueness pre-checks give precise
// duplicate reporting; the real guard against concurrent duplicate
// registrations is the unique constraint, mapped back to the same typed
// failure here.
func (s *Service) Register(ctx context.Context, input RegistrationInput) (*Result, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if err := ValidateFields(UsernameConstraints, "username", username); err != nil {
		return nil, err
	}
	if err := ValidateFields(EmailConstraints, "email", email); err != nil {
		return nil, err
	}

	taken, err := s.users.Get(ctx, map[string]any{"username": username}, "id")
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, &DuplicateError{Field: "username"}
	}

	taken, err = s.users.Get(ctx, map[string]any{"email": email}, "id")
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, &DuplicateError{Field: "email"}
	}

	hash, err := s.hasher.HandlePassword(input.ReqPass, input.ConPass)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, repositories.CreateUserParams{
		FirstName: optional(input.FirstName),
		LastName:  optional(input.LastName),
		Username:  username,
		Email:     email,
		Hash:      hash,
	})
	if err != nil {
		if querybuilder.IsUniqueViolation(err) {
			return nil, duplicateFromConstraint(err)
		}
		return nil, err
	}

	s.requestVerificationMail(ctx, user)

	return s.authResult(user)
}

// Login authenticates by username or email. A hash comparison runs even
// when the identifier is unknown, against a fixed dummy hash, so the
// failure latency does not reveal whether the account exists.
func (s *Service) Login(ctx context.Context, identifier, password string) (*Result, error) {
	identifier = strings.TrimSpace(identifier)
	password = strings.TrimSpace(password)

	conditions := map[string]any{"username": identifier}
	if strings.Contains(identifier, "@") {
		conditions = map[string]any{"email": strings.ToLower(identifier)}
	}

	withHash, err := s.users.GetWithHash(ctx, conditions)
	if err != nil {
		return nil, err
	}

	hashToCompare := dummyHash
	if withHash != nil {
		hashToCompare = withHash.Hash
		withHash.Hash = ""
	}
	match := s.hasher.Verify(password, hashToCompare)

	if withHash == nil || !match {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.Get(ctx, conditions)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	return s.authResult(user)
}

// VerifyEmail consumes an email-verification token and flips the user's
// verified flag.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.store.Consume(ctx, token, EmailVerification)
	if err != nil {
		return err
	}

	user, err := s.users.Get(ctx, map[string]any{"id": userID})
	if err != nil {
		return err
	}
	if user == nil {
		// The token outlived its user; a data-integrity anomaly.
		return ErrUserNotFound
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	_, err = s.users.Update(ctx, user.ID, map[string]any{"emailVerified": true})
	return err
}

// ForgotPassword issues a password-reset token and requests its delivery.
// The acknowledgment is identical whether or not the email belongs to an
// account, so the endpoint cannot be used to enumerate accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateFields(EmailConstraints, "email", email); err != nil {
		return err
	}

	user, err := s.users.Get(ctx, map[string]any{"email": email}, "id", "email")
	if err != nil {
		return err
	}
	if user == nil {
		log.Info("Password reset requested for unknown email")
		return nil
	}

	token, err := s.store.Issue(ctx, user.ID, PasswordReset)
	if err != nil {
		return err
	}
	s.dispatchMail(ctx, jobs.EmailPayload{
		To:    user.Email,
		Kind:  jobs.EmailKindResetPassword,
		Token: token,
	})
	return nil
}

// ResetPassword consumes a password-reset token and replaces the user's
// password hash. The new password is validated before the token is
// consumed, so a rejected password does not burn the token.
func (s *Service) ResetPassword(ctx context.Context, token, reqPass, conPass string) error {
	hash, err := s.hasher.HandlePassword(reqPass, conPass)
	if err != nil {
		return err
	}

	userID, err := s.store.Consume(ctx, token, PasswordReset)
	if err != nil {
		return err
	}

	updated, err := s.users.Update(ctx, userID, map[string]any{"hash": hash})
	if err != nil {
		return err
	}
	if updated == nil {
		return ErrUserNotFound
	}
	return nil
}

// ResendVerification issues a fresh verification token for a signed-in but
// unverified user and requests its delivery.
func (s *Service) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.Get(ctx, map[string]any{"id": userID})
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	s.requestVerificationMail(ctx, user)
	return nil
}

// User returns the account of the given user for self-service endpoints.
func (s *Service) User(ctx context.Context, userID uuid.UUID) (*schemas.User, error) {
	user, err := s.users.Get(ctx, map[string]any{"id": userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// PublicProfile returns the public projection of the named user. The email
// address is not part of it.
func (s *Service) PublicProfile(ctx context.Context, username string) (*schemas.User, error) {
	user, err := s.users.GetPublic(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// DeleteAccount removes the user. Token rows cascade away with the user
// row; outstanding JWTs simply stop resolving to an account.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	affected, err := s.users.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Refresh verifies a refresh token and rotates the pair: the caller gets a
// fresh access token and a fresh refresh token bound to the same subject.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	claims, err := s.jwt.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	user, err := s.users.Get(ctx, map[string]any{"id": userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrRefreshInvalid
	}

	return s.authResult(user)
}

// requestVerificationMail issues an EmailVerification token and queues its
// delivery. Both steps are fire-and-forget relative to the calling flow.
func (s *Service) requestVerificationMail(ctx context.Context, user *schemas.User) {
	token, err := s.store.Issue(ctx, user.ID, EmailVerification)
	if err != nil {
		log.Warn("Issuing verification token failed: ", err)
		return
	}
	s.dispatchMail(ctx, jobs.EmailPayload{
		To:       user.Email,
		Kind:     jobs.EmailKindVerify,
		Username: user.Username,
		Token:    token,
	})
}

// dispatchMail enqueues a delivery and swallows failures: a full queue must
// never fail the primary operation.
func (s *Service) dispatchMail(ctx context.Context, payload jobs.EmailPayload) {
	if err := s.dispatcher.DispatchEmail(ctx, payload); err != nil {
		log.Warn("Dispatching email failed: ", err)
	}
}

func (s *Service) authResult(user *schemas.User) (*Result, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID.String(), user.Username, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, err
	}
	return &Result{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// duplicateFromConstraint maps a unique-constraint violation raised by a
// concurrent registration onto the same typed failure the pre-checks
// produce.
func duplicateFromConstraint(err error) error {
	if strings.Contains(querybuilder.ConstraintName(err), "email") {
		return &DuplicateError{Field: "email"}
	}
	return &DuplicateError{Field: "username"}
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
