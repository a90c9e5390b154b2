package errors

import (
	"errors"
	"net/http"

	"uniportal/internal/authflow"
	"uniportal/internal/model"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
	// TrueRole is set when the account exists under the other role.
	TrueRole model.Role `json:"true_role,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Field      string
	TrueRole   model.Role
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:    e.Message,
		Code:     e.Code,
		Field:    e.Field,
		TrueRole: e.TrueRole,
	}
}

// MapErrorToHTTP maps flow errors to HTTP errors. Anything that is not a
// flow error is reported as an internal error without its message.
func MapErrorToHTTP(err error) *HTTPError {
	fe, ok := authflow.AsError(err)
	if !ok {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}

	he := &HTTPError{Message: fe.Message, Code: fe.Code, Field: fe.Field}
	switch fe.Kind {
	case authflow.KindValidation:
		he.StatusCode = http.StatusBadRequest
	case authflow.KindIdentity:
		he.StatusCode = identityStatus(fe)
	case authflow.KindProfileNotFound:
		he.StatusCode = http.StatusNotFound
	case authflow.KindRoleMismatch:
		he.StatusCode = http.StatusForbidden
		he.TrueRole = fe.TrueRole
	case authflow.KindBusy:
		he.StatusCode = http.StatusTooManyRequests
	case authflow.KindProfileRead, authflow.KindRoleCache:
		he.StatusCode = http.StatusServiceUnavailable
	default:
		he.StatusCode = http.StatusInternalServerError
	}
	return he
}

func identityStatus(fe *authflow.Error) int {
	switch {
	case errors.Is(fe.Err, authflow.ErrIdentityExists):
		return http.StatusConflict
	case fe.State == authflow.StateAuthenticatingIdentity:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
