package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"uniportal/internal/cache"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	accessTokenKeyPrefix  = "blacklist:access_token:"
	sessionKeyPrefix      = "session:"
)

// SessionRecord ties an identity to its current token pair. An identity has
// at most one live session; storing a new one supersedes the old.
type SessionRecord struct {
	IdentityID      string    `json:"identity_id"`
	Email           string    `json:"email"`
	AccessTokenID   string    `json:"access_token_id"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
	RefreshTokenID  string    `json:"refresh_token_id"`
}

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreSession(ctx context.Context, rec SessionRecord) error
	GetSession(ctx context.Context, identityID string) (*SessionRecord, error)
	RefreshTokenOwner(ctx context.Context, tokenID string) (string, error)
	ReplaceAccessToken(ctx context.Context, identityID string, token IssuedToken) error
	RevokeSession(ctx context.Context, identityID string) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore handles storage and retrieval of sessions in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store. Redis errors are always reported.
func NewTokenStore(c *cache.Client) *TokenStore {
	return &TokenStore{cache: c.Required()}
}

// StoreSession records the session, revoking any session it replaces.
func (s *TokenStore) StoreSession(ctx context.Context, rec SessionRecord) error {
	if err := s.RevokeSession(ctx, rec.IdentityID); err != nil {
		return fmt.Errorf("revoke previous session: %w", err)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.cache.Set(ctx, refreshTokenKeyPrefix+rec.RefreshTokenID, []byte(rec.IdentityID), RefreshTokenExpiry); err != nil {
		return err
	}
	return s.cache.Set(ctx, sessionKeyPrefix+rec.IdentityID, payload, RefreshTokenExpiry)
}

// GetSession returns the live session for an identity, or nil when there is none.
func (s *TokenStore) GetSession(ctx context.Context, identityID string) (*SessionRecord, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+identityID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var rec SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &rec, nil
}

// ReplaceAccessToken points the live session at a newly issued access token.
func (s *TokenStore) ReplaceAccessToken(ctx context.Context, identityID string, token IssuedToken) error {
	rec, err := s.GetSession(ctx, identityID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no session for identity %s", identityID)
	}

	if err := s.blacklist(ctx, rec.AccessTokenID, rec.AccessExpiresAt); err != nil {
		return err
	}
	rec.AccessTokenID = token.ID
	rec.AccessExpiresAt = token.ExpiresAt
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+identityID, payload, RefreshTokenExpiry)
}

// RefreshTokenOwner returns the identity a refresh token id belongs to, or ""
// when the token is unknown or revoked.
func (s *TokenStore) RefreshTokenOwner(ctx context.Context, tokenID string) (string, error) {
	data, err := s.cache.Get(ctx, refreshTokenKeyPrefix+tokenID)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RevokeSession deletes the refresh token and blacklists the access token
// until it would have expired anyway.
func (s *TokenStore) RevokeSession(ctx context.Context, identityID string) error {
	rec, err := s.GetSession(ctx, identityID)
	if err != nil || rec == nil {
		return err
	}

	if err := s.cache.Delete(ctx, refreshTokenKeyPrefix+rec.RefreshTokenID); err != nil {
		return err
	}
	if err := s.blacklist(ctx, rec.AccessTokenID, rec.AccessExpiresAt); err != nil {
		return err
	}
	return s.cache.Delete(ctx, sessionKeyPrefix+identityID)
}

func (s *TokenStore) blacklist(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, accessTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsAccessTokenBlacklisted checks if an access token is blacklisted.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, accessTokenKeyPrefix+tokenID)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}
