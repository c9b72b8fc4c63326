package identity

import "errors"

var (
	ErrMissingAPIKey    = errors.New("firebase web api key is not configured")
	ErrAdminUnavailable = errors.New("firebase admin auth is not configured")
)

// Code is an Identity Toolkit error code
type Code string

const (
	CodeEmailNotFound     Code = "EMAIL_NOT_FOUND"
	CodeInvalidPassword   Code = "INVALID_PASSWORD"
	CodeInvalidCredential Code = "INVALID_LOGIN_CREDENTIALS"
	CodeUserDisabled      Code = "USER_DISABLED"
	CodeTooManyAttempts   Code = "TOO_MANY_ATTEMPTS_TRY_LATER"
	CodeEmailExists       Code = "EMAIL_EXISTS"
	CodeWeakPassword      Code = "WEAK_PASSWORD"
	CodeInvalidEmail      Code = "INVALID_EMAIL"
	CodeNetwork           Code = "NETWORK_ERROR"
	CodeUnknown           Code = "UNKNOWN"
)

// Error carries the platform code of a failed identity call
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

var friendlyMessages = map[Code]string{
	CodeInvalidEmail:      "Please enter a valid email address.",
	CodeUserDisabled:      "This account has been disabled.",
	CodeEmailNotFound:     "Invalid email or password.",
	CodeInvalidPassword:   "Invalid email or password.",
	CodeInvalidCredential: "Invalid email or password.",
	CodeTooManyAttempts:   "Too many attempts. Please try again later.",
	CodeEmailExists:       "Email already in use.",
	CodeWeakPassword:      "Password should be at least 6 characters.",
	CodeNetwork:           "Network error. Please check your connection.",
}

// Message maps an identity error to the text shown to the user. Errors
// without a known code get fallback.
func Message(err error, fallback string) string {
	var idErr *Error
	if errors.As(err, &idErr) {
		if msg, ok := friendlyMessages[idErr.Code]; ok {
			return msg
		}
	}
	return fallback
}
