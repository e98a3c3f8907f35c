package schemas

// ErrorDTO is the envelope for every error response. Failures carries the
// names of the violated validation rules when the error is a validation
// failure.
type ErrorDTO struct {
	Error    CustomError `json:"error"`
	Failures []string    `json:"failures,omitempty"`
}

// AuthResponseDTO is returned by registration and login. The refresh token
// travels separately as an HTTP-only cookie, never in the body.
type AuthResponseDTO struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

// TokenDTO carries a freshly issued access token.
type TokenDTO struct {
	AccessToken string `json:"accessToken"`
}

// MessageDTO is a generic acknowledgment body.
type MessageDTO struct {
	Message string `json:"message"`
}

// MetadataDTO describes the running API.
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}
