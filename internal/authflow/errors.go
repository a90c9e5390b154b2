package authflow

import (
	"errors"

	"uniportal/internal/model"
)

var (
	// ErrIdentityExists is returned by gateways when the email is already registered.
	ErrIdentityExists = errors.New("email address is already in use by another account")
	// ErrInvalidCredentials is returned by gateways when email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrProfileNotFound is returned by profile stores when no record exists for an identity.
	ErrProfileNotFound = errors.New("profile not found")
)

// Kind classifies a flow failure.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindIdentity        Kind = "identity"
	KindProfileNotFound Kind = "profile_not_found"
	KindProfileRead     Kind = "profile_read"
	KindProfileWrite    Kind = "profile_write"
	KindRoleMismatch    Kind = "role_mismatch"
	KindRoleCache       Kind = "role_cache"
	KindBusy            Kind = "busy"
)

// Codes for failures that are not validation failures.
const (
	CodeIdentityExists     = "identity_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeIdentityError      = "identity_error"
	CodeProfileNotFound    = "profile_not_found"
	CodeProfileReadFailed  = "profile_read_failed"
	CodeProfileWriteFailed = "profile_write_failed"
	CodeRoleMismatch       = "role_mismatch"
	CodeRoleCacheFailed    = "role_cache_failed"
	CodeFlowInProgress     = "flow_in_progress"
)

// Error is the failure signal returned by a flow. Message is safe to show to
// the user; for identity failures it is the gateway's message, unmodified.
type Error struct {
	Kind    Kind
	Code    string
	Field   string
	Message string
	// TrueRole is the role stored on the profile. Set only for KindRoleMismatch.
	TrueRole model.Role
	// State is the step the flow was in when it failed.
	State State
	Err   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind, so callers can test
// errors.Is(err, &authflow.Error{Kind: authflow.KindRoleMismatch}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// AsError extracts a flow *Error from err.
func AsError(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func identityError(state State, err error) *Error {
	code := CodeIdentityError
	switch {
	case errors.Is(err, ErrIdentityExists):
		code = CodeIdentityExists
	case errors.Is(err, ErrInvalidCredentials):
		code = CodeInvalidCredentials
	}
	return &Error{Kind: KindIdentity, Code: code, Message: err.Error(), State: state, Err: err}
}

func roleMismatch(trueRole model.Role) *Error {
	return &Error{
		Kind:     KindRoleMismatch,
		Code:     CodeRoleMismatch,
		Message:  "this account is registered as " + trueRole.Title(),
		TrueRole: trueRole,
		State:    StateCheckingRole,
		Err:      errors.New("role mismatch"),
	}
}
