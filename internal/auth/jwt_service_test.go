package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", "uniportal")

	access, err := svc.GenerateAccessToken("identity-1", "ab123@gre.ac.uk")
	require.NoError(t, err)
	assert.NotEmpty(t, access.ID)
	assert.WithinDuration(t, time.Now().Add(AccessTokenExpiry), access.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(access.Token)
	require.NoError(t, err)
	assert.Equal(t, "identity-1", claims.IdentityID)
	assert.Equal(t, "ab123@gre.ac.uk", claims.Email)
	assert.Equal(t, access.ID, claims.ID)
	assert.Equal(t, "uniportal", claims.Issuer)
	assert.Equal(t, TokenTypeAccess, claims.Type)

	refresh, err := svc.GenerateRefreshToken("identity-1", "ab123@gre.ac.uk")
	require.NoError(t, err)
	assert.NotEqual(t, access.ID, refresh.ID)
	assert.WithinDuration(t, time.Now().Add(RefreshTokenExpiry), refresh.ExpiresAt, 5*time.Second)
}

func TestJWTService_ValidateToken_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret", "uniportal")
	other := NewJWTService("other-secret", "uniportal")

	foreign, err := other.GenerateAccessToken("identity-1", "ab123@gre.ac.uk")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		IdentityID: "identity-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "old",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		IdentityID: "identity-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong secret", token: foreign.Token},
		{name: "expired", token: expired},
		{name: "missing token id", token: noID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	svc := NewJWTService("test-secret", "uniportal")

	access, err := svc.GenerateAccessToken("identity-1", "ab123@gre.ac.uk")
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken("identity-1", "ab123@gre.ac.uk")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(access.Token)
	require.NoError(t, err)
	assert.Equal(t, access.ID, claims.ID)

	claims, err = svc.ValidateRefreshToken(refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)

	_, err = svc.ValidateAccessToken(refresh.Token)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.ValidateRefreshToken(access.Token)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	untyped, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		IdentityID: "identity-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "legacy",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(untyped)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}
