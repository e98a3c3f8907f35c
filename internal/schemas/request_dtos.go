package schemas

// RegistrationRequest is the body of POST /api/auth/register. The custom
// tags run the same constraint tables as the credential policy, so tag
// validation and the policy's per-rule failure reports cannot disagree.
type RegistrationRequest struct {
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
	Username  string `json:"username" validate:"required,max=30,username_validation"`
	Email     string `json:"email" validate:"required,max=320"`
	ReqPass   string `json:"reqPass" validate:"required,password_validation"`
	ConPass   string `json:"conPass" validate:"required"`
}

// LoginRequest is the body of POST /api/auth/login. Identifier is either a
// username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=320"`
	Password   string `json:"password" validate:"required"`
}

// ForgotPasswordRequest is the body of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,max=320"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	ReqPass string `json:"reqPass" validate:"required"`
	ConPass string `json:"conPass" validate:"required"`
}
