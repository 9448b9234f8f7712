package httputil

// Machine-readable error codes returned alongside error messages.
// Clients should branch on these rather than on message text.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeInternalError      = "INTERNAL_ERROR"

	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeNameRequired       = "NAME_REQUIRED"
	CodeTitleRequired      = "TITLE_REQUIRED"
	CodeEmailRequired      = "EMAIL_REQUIRED"
	CodeInvalidEmailFormat = "INVALID_EMAIL_FORMAT"
	CodePasswordRequired   = "PASSWORD_REQUIRED"
	CodePasswordTooShort   = "PASSWORD_TOO_SHORT"

	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"

	CodeNoTokenProvided = "NO_TOKEN_PROVIDED"
	CodeTokenMissing    = "TOKEN_MISSING"
	CodeInvalidToken    = "INVALID_TOKEN"

	CodeNotFound  = "NOT_FOUND"
	CodeInvalidID = "INVALID_ID"
)
