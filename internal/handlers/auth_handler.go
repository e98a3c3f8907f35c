// Package handlers contains the gin handlers. They bind and validate
// request bodies, delegate to the auth service and translate its typed
// outcomes into HTTP responses.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"server-identity/internal/auth"
	"server-identity/internal/querybuilder"
	"server-identity/internal/schemas"
	"server-identity/internal/utils"
	"server-identity/internal/validators"
)

const refreshCookieName = "refreshToken"

// AuthHandler serves the credential and token lifecycle endpoints.
type AuthHandler struct {
	service     *auth.Service
	validator   *validators.Validator
	verifyEmail func(email string) bool
	refreshTTL  time.Duration
	production  bool
}

// NewAuthHandler constructs the handler. production controls the Secure
// flag on the refresh cookie and the MX deliverability check on
// registration; both are off outside production so local clients on plain
// HTTP and without outbound DNS keep working.
func NewAuthHandler(service *auth.Service, refreshTTL time.Duration, production bool) *AuthHandler {
	validator := validators.GetValidator()
	return &AuthHandler{
		service:     service,
		validator:   validator,
		verifyEmail: validator.VerifyEmail,
		refreshTTL:  refreshTTL,
		production:  production,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req schemas.RegistrationRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	if h.production && !h.verifyEmail(req.Email) {
		utils.WriteAndLogError(c, schemas.EmailUnreachable, http.StatusBadRequest, errors.New("email address failed the deliverability check"))
		return
	}

	result, err := h.service.Register(c.Request.Context(), auth.RegistrationInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		ReqPass:   req.ReqPass,
		ConPass:   req.ConPass,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	utils.WriteAndLogResponse(c, &schemas.AuthResponseDTO{User: result.User, AccessToken: result.AccessToken}, http.StatusCreated)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req schemas.LoginRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	utils.WriteAndLogResponse(c, &schemas.AuthResponseDTO{User: result.User, AccessToken: result.AccessToken}, http.StatusOK)
}

// VerifyEmail handles GET /api/auth/verify-email?token=...
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, errors.New("missing token parameter"))
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), token); err != nil {
		h.writeServiceError(c, err)
		return
	}
	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Email verified successfully"}, http.StatusOK)
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is
// the same whether or not the email belongs to an account.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req schemas.ForgotPasswordRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.writeServiceError(c, err)
		return
	}
	utils.WriteAndLogResponse(c, &schemas.MessageDTO{
		Message: "If an account with that email exists, a password reset link has been sent",
	}, http.StatusOK)
}

// ResetPassword handles POST /api/auth/reset-password?token=...
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, errors.New("missing token parameter"))
		return
	}

	var req schemas.ResetPasswordRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), token, req.ReqPass, req.ConPass); err != nil {
		h.writeServiceError(c, err)
		return
	}
	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Password reset successfully"}, http.StatusOK)
}

// Refresh handles POST /api/auth/refresh. The refresh token travels in an
// HTTP-only cookie; a successful call rotates it.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing refresh cookie"))
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	utils.WriteAndLogResponse(c, &schemas.TokenDTO{AccessToken: result.AccessToken}, http.StatusOK)
}

// ResendVerification handles POST /api/account/resend-verify-email for the
// authenticated user.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	userId, ok := c.Value(utils.UserIdKey.String()).(uuid.UUID)
	if !ok {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing user id in context"))
		return
	}

	if err := h.service.ResendVerification(c.Request.Context(), userId); err != nil {
		h.writeServiceError(c, err)
		return
	}
	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Verification email sent"}, http.StatusOK)
}

// PublicProfile handles GET /api/users/:username. The projection omits the
// email address.
func (h *AuthHandler) PublicProfile(c *gin.Context) {
	user, err := h.service.PublicProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	utils.WriteAndLogResponse(c, user, http.StatusOK)
}

// DeleteAccount handles DELETE /api/account/ for the authenticated user.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userId, ok := c.Value(utils.UserIdKey.String()).(uuid.UUID)
	if !ok {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing user id in context"))
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), userId); err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Account deleted"}, http.StatusOK)
}

// Account handles GET /api/account/ for the authenticated user.
func (h *AuthHandler) Account(c *gin.Context) {
	userId, ok := c.Value(utils.UserIdKey.String()).(uuid.UUID)
	if !ok {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing user id in context"))
		return
	}

	user, err := h.service.User(c.Request.Context(), userId)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	utils.WriteAndLogResponse(c, user, http.StatusOK)
}

// bindAndValidate decodes the JSON body into obj, strips markup from its
// string fields and runs tag validation. It writes the error response
// itself and reports whether the handler may continue.
func (h *AuthHandler) bindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return false
	}
	if err := h.validator.SanitizeData(obj); err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return false
	}
	if err := h.validator.Validate.Struct(obj); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationFailed, http.StatusBadRequest, err, tagFailures(err)...)
		return false
	}
	return true
}

// tagFailures flattens validator errors into "Field: rule" strings.
func tagFailures(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}
	failures := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		failures = append(failures, fieldErr.Field()+": "+fieldErr.Tag())
	}
	return failures
}

// writeServiceError maps the service's typed outcomes onto HTTP responses.
// Database faults are logged in full but reach the client as a generic
// error.
func (h *AuthHandler) writeServiceError(c *gin.Context, err error) {
	var validationErr *auth.ValidationError
	var duplicateErr *auth.DuplicateError
	var databaseErr *querybuilder.DatabaseError

	switch {
	case errors.As(err, &validationErr):
		utils.WriteAndLogError(c, schemas.ValidationFailed, http.StatusBadRequest, err, validationErr.Failed...)
	case errors.As(err, &duplicateErr):
		if duplicateErr.Field == "email" {
			utils.WriteAndLogError(c, schemas.EmailTaken, http.StatusConflict, err)
		} else {
			utils.WriteAndLogError(c, schemas.UsernameTaken, http.StatusConflict, err)
		}
	case errors.Is(err, auth.ErrInvalidCredentials):
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
	case errors.Is(err, auth.ErrTokenInvalid):
		utils.WriteAndLogError(c, schemas.InvalidToken, http.StatusBadRequest, err)
	case errors.Is(err, auth.ErrTokenExpired):
		utils.WriteAndLogError(c, schemas.TokenExpired, http.StatusGone, err)
	case errors.Is(err, auth.ErrAlreadyVerified):
		utils.WriteAndLogError(c, schemas.EmailAlreadyVerified, http.StatusConflict, err)
	case errors.Is(err, auth.ErrUserNotFound):
		utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
	case errors.Is(err, auth.ErrRefreshInvalid):
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
	case errors.As(err, &databaseErr):
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
	default:
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
	}
}

// setRefreshCookie delivers the refresh token as a strict, HTTP-only
// cookie scoped to the auth endpoints.
func (h *AuthHandler) setRefreshCookie(c *gin.Context, refreshToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, refreshToken, int(h.refreshTTL.Seconds()), "/api/auth", "", h.production, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/api/auth", "", h.production, true)
}
