// Package apierror defines the error envelope returned by every failing
// request and the catalog of domain errors used across handlers.
package apierror

import "fmt"

// Error types carried in the error_type field of the response envelope.
const (
	TypeAuthentication = "AUTHENTICATION"
	TypeAuthorization  = "AUTHORIZATION"
	TypeValidation     = "VALIDATION"
	TypeNetwork        = "NETWORK"
	TypeInternal       = "INTERNAL"
	TypeUnknown        = "UNKNOWN"
)

// APIError is the single error shape handlers return. It renders to the
// client as {error_type, message, errors?} with its Code as HTTP status.
type APIError struct {
	Code    int      `json:"-"`
	Type    string   `json:"error_type"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`

	cause error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Type, e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any, to errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.cause
}

// New creates an APIError with the given status code, type, and message.
func New(code int, errType, message string, errs ...string) *APIError {
	return &APIError{Code: code, Type: errType, Message: message, Errors: errs}
}

// Internal wraps an unexpected failure into a generic 500 envelope. The
// cause stays reachable through errors.Is/As but never renders to the
// client.
func Internal(err error) *APIError {
	return &APIError{Code: 500, Type: TypeInternal, Message: "Something went wrong", cause: err}
}

// Validation builds a 400 VALIDATION error carrying per-field messages.
func Validation(errs []string) *APIError {
	msg := "Request body failed validation"
	if len(errs) > 0 {
		msg = errs[0]
	}
	return &APIError{Code: 400, Type: TypeValidation, Message: msg, Errors: errs}
}

// Auth errors
var (
	ErrNoToken = New(403, TypeAuthorization, "Unauthorized. Please provide a token.",
		"auth/no-id-token")
	ErrTokenVerifyFailure = New(401, TypeAuthorization, "Error while verifying token")
	ErrHandleTaken        = New(400, TypeAuthentication, "This handle is already in use by another account.",
		"auth/handle-already-in-use")
	ErrEmailInUse = New(400, TypeAuthentication, "This email is already in use by another account.",
		"auth/email-already-in-use")
	ErrWeakPassword = New(400, TypeAuthentication, "Password is too easy to guess. Please enter a stronger password.",
		"auth/weak-password")
	ErrWrongCredentials = New(401, TypeAuthentication, "Wrong credentials. Please try again.",
		"auth/wrong-credentials")
)

// Scream errors
var (
	ErrScreamNotFound   = New(404, TypeNetwork, "Scream not found.")
	ErrAlreadyLiked     = New(400, TypeNetwork, "Scream already liked. Cannot like again.")
	ErrNotLiked         = New(400, TypeNetwork, "Scream not yet liked. Cannot unlike.")
	ErrUnauthorizedUser = New(403, TypeNetwork, "Unauthorized user. Must be owner of Scream to delete.")
)

// User errors
var (
	ErrUserNotFound = New(404, TypeNetwork,
		"There is no user record corresponding to this identifier. The user may have been deleted.",
		"auth/user-not-found")
	ErrNoUserDetails = New(400, TypeNetwork,
		"Request must include at least one of: bio, location, or website.")
	ErrWrongFileType = New(400, TypeNetwork,
		"Wrong file type submitted. Please only use JPEG or PNG files for images.")
	ErrImageTooLarge        = New(400, TypeNetwork, "Image is too large.")
	ErrIncorrectContentType = New(400, TypeNetwork,
		"Request must include Content-Type Header set to multipart/form-data")
)
