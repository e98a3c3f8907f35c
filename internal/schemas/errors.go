package schemas

// CustomError is the error payload returned to clients. The code is stable
// across releases so clients can branch on it; the message is advisory.
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	BadRequest = &CustomError{
		Code:    "ERR-001",
		Message: "The request body is invalid. Please check the request body and try again.",
	}
	ValidationFailed = &CustomError{
		Code:    "ERR-002",
		Message: "One or more fields failed validation.",
	}
	UsernameTaken = &CustomError{
		Code:    "ERR-003",
		Message: "The username is already taken. Please try another username.",
	}
	EmailTaken = &CustomError{
		Code:    "ERR-004",
		Message: "The email is already registered.",
	}
	InvalidCredentials = &CustomError{
		Code:    "ERR-005",
		Message: "The credentials are invalid.",
	}
	InvalidToken = &CustomError{
		Code:    "ERR-006",
		Message: "The token is invalid.",
	}
	TokenExpired = &CustomError{
		Code:    "ERR-007",
		Message: "The token is expired. Please request a new one.",
	}
	EmailAlreadyVerified = &CustomError{
		Code:    "ERR-008",
		Message: "The email is already verified.",
	}
	UserNotFound = &CustomError{
		Code:    "ERR-009",
		Message: "The user was not found.",
	}
	Unauthorized = &CustomError{
		Code:    "ERR-010",
		Message: "The request is unauthorized. Please login to your account.",
	}
	DatabaseError = &CustomError{
		Code:    "ERR-011",
		Message: "A database error occurred. Please try again later.",
	}
	InternalServerError = &CustomError{
		Code:    "ERR-012",
		Message: "An internal server error occurred. Please try again later.",
	}
	EmailUnreachable = &CustomError{
		Code:    "ERR-013",
		Message: "The email address appears to be unreachable. Please check it and try again.",
	}
)
