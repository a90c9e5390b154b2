package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"uniportal/internal/auth"
	"uniportal/internal/authflow"
	"uniportal/internal/model"
	"uniportal/internal/repository"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
)

var (
	// ErrWeakPassword is returned when a new password is shorter than minPasswordLength.
	// The text is shown to users verbatim and matches the hosted identity
	// provider's wording, hence the capital letter.
	ErrWeakPassword = errors.New("Password should be at least 6 characters")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// IdentityGateway owns credentials and sessions.
type IdentityGateway interface {
	authflow.IdentityGateway
	Refresh(ctx context.Context, refreshToken string) (*authflow.Session, error)
	IsRevoked(ctx context.Context, accessTokenID string) (bool, error)
}

type identityGateway struct {
	identities repository.IdentityRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewIdentityGateway creates the credential-backed identity gateway.
func NewIdentityGateway(identities repository.IdentityRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) IdentityGateway {
	return &identityGateway{
		identities: identities,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// CreateIdentity stores a new credential with a hashed password and returns its id.
func (g *identityGateway) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrWeakPassword
	}

	existing, err := g.identities.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", authflow.ErrIdentityExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("check identity existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	identity := &model.Identity{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := g.identities.Create(ctx, identity); err != nil {
		// Lost a race with a concurrent sign-up for the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return "", authflow.ErrIdentityExists
		}
		return "", fmt.Errorf("create identity: %w", err)
	}

	return identity.ID, nil
}

// Authenticate verifies the credentials and opens a session, replacing any
// session the identity already had.
func (g *identityGateway) Authenticate(ctx context.Context, email, password string) (*authflow.Session, error) {
	identity, err := g.identities.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, authflow.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, authflow.ErrInvalidCredentials
	}

	access, err := g.jwtService.GenerateAccessToken(identity.ID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := g.jwtService.GenerateRefreshToken(identity.ID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	err = g.tokenStore.StoreSession(ctx, auth.SessionRecord{
		IdentityID:      identity.ID,
		Email:           identity.Email,
		AccessTokenID:   access.ID,
		AccessExpiresAt: access.ExpiresAt,
		RefreshTokenID:  refresh.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &authflow.Session{
		IdentityID:   identity.ID,
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		ExpiresAt:    access.ExpiresAt,
	}, nil
}

// SignOut ends the identity's session. Signing out without a session is a no-op.
func (g *identityGateway) SignOut(ctx context.Context, identityID string) error {
	if err := g.tokenStore.RevokeSession(ctx, identityID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Refresh validates a refresh token and returns a session with a new access token.
func (g *identityGateway) Refresh(ctx context.Context, refreshToken string) (*authflow.Session, error) {
	claims, err := g.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	owner, err := g.tokenStore.RefreshTokenOwner(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if owner == "" || owner != claims.IdentityID {
		return nil, ErrInvalidRefreshToken
	}

	access, err := g.jwtService.GenerateAccessToken(claims.IdentityID, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	if err := g.tokenStore.ReplaceAccessToken(ctx, claims.IdentityID, access); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &authflow.Session{
		IdentityID:   claims.IdentityID,
		AccessToken:  access.Token,
		RefreshToken: refreshToken,
		ExpiresAt:    access.ExpiresAt,
	}, nil
}

// IsRevoked reports whether an access token was invalidated by sign-out or refresh.
func (g *identityGateway) IsRevoked(ctx context.Context, accessTokenID string) (bool, error) {
	return g.tokenStore.IsAccessTokenBlacklisted(ctx, accessTokenID)
}
