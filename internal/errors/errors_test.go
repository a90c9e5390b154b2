package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"uniportal/internal/authflow"
	"uniportal/internal/model"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation",
			err:        &authflow.Error{Kind: authflow.KindValidation, Code: authflow.CodeInvalidDomain, Field: "email", Message: "use your university email"},
			wantStatus: http.StatusBadRequest,
			wantCode:   authflow.CodeInvalidDomain,
		},
		{
			name:       "identity exists",
			err:        &authflow.Error{Kind: authflow.KindIdentity, Code: authflow.CodeIdentityExists, State: authflow.StateCreatingIdentity, Message: "in use", Err: authflow.ErrIdentityExists},
			wantStatus: http.StatusConflict,
			wantCode:   authflow.CodeIdentityExists,
		},
		{
			name:       "sign-in rejected",
			err:        &authflow.Error{Kind: authflow.KindIdentity, Code: authflow.CodeInvalidCredentials, State: authflow.StateAuthenticatingIdentity, Message: "invalid", Err: authflow.ErrInvalidCredentials},
			wantStatus: http.StatusUnauthorized,
			wantCode:   authflow.CodeInvalidCredentials,
		},
		{
			name:       "identity creation rejected",
			err:        &authflow.Error{Kind: authflow.KindIdentity, Code: authflow.CodeIdentityError, State: authflow.StateCreatingIdentity, Message: "weak", Err: stderrors.New("weak")},
			wantStatus: http.StatusBadRequest,
			wantCode:   authflow.CodeIdentityError,
		},
		{
			name:       "profile not found",
			err:        &authflow.Error{Kind: authflow.KindProfileNotFound, Code: authflow.CodeProfileNotFound, Message: "profile not found"},
			wantStatus: http.StatusNotFound,
			wantCode:   authflow.CodeProfileNotFound,
		},
		{
			name:       "profile write",
			err:        &authflow.Error{Kind: authflow.KindProfileWrite, Code: authflow.CodeProfileWriteFailed, Message: "write failed"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   authflow.CodeProfileWriteFailed,
		},
		{
			name:       "profile read",
			err:        &authflow.Error{Kind: authflow.KindProfileRead, Code: authflow.CodeProfileReadFailed, Message: "read failed"},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   authflow.CodeProfileReadFailed,
		},
		{
			name:       "busy",
			err:        &authflow.Error{Kind: authflow.KindBusy, Code: authflow.CodeFlowInProgress, Message: "busy"},
			wantStatus: http.StatusTooManyRequests,
			wantCode:   authflow.CodeFlowInProgress,
		},
		{
			name:       "unknown error",
			err:        stderrors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, he.StatusCode)
			assert.Equal(t, tt.wantCode, he.Code)
		})
	}
}

func TestMapErrorToHTTP_RoleMismatchCarriesTrueRole(t *testing.T) {
	err := &authflow.Error{
		Kind:     authflow.KindRoleMismatch,
		Code:     authflow.CodeRoleMismatch,
		Message:  "this account is registered as Staff",
		TrueRole: model.RoleStaff,
	}

	resp := MapErrorToHTTP(err).ToErrorResponse()
	assert.Equal(t, ErrorResponse{
		Error:    "this account is registered as Staff",
		Code:     authflow.CodeRoleMismatch,
		TrueRole: model.RoleStaff,
	}, resp)
}
