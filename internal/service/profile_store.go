package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"uniportal/internal/authflow"
	"uniportal/internal/cache"
	"uniportal/internal/model"
	"uniportal/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

// ProfileStore reads and writes user profiles, caching reads in Redis.
type ProfileStore interface {
	authflow.ProfileStore
	ListByRole(ctx context.Context, role model.Role) ([]model.UserProfile, error)
}

type profileStore struct {
	repo  repository.ProfileRepository
	cache *cache.Client
}

// NewProfileStore builds a ProfileStore with repository and cache.
func NewProfileStore(repo repository.ProfileRepository, cache *cache.Client) ProfileStore {
	return &profileStore{repo: repo, cache: cache}
}

func (s *profileStore) cacheKey(identityID string) string {
	return "profile:" + identityID
}

func (s *profileStore) Put(ctx context.Context, identityID string, profile model.UserProfile) error {
	profile.IdentityID = identityID
	if err := s.repo.Create(ctx, &profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("profile for %s already exists", identityID)
		}
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(identityID))
	return nil
}

func (s *profileStore) Get(ctx context.Context, identityID string) (*model.UserProfile, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(identityID)); data != nil {
		var cached model.UserProfile
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	profile, err := s.repo.FindByIdentityID(ctx, identityID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, authflow.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(profile); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(identityID), payload, profileCacheTTL)
	}
	return profile, nil
}

func (s *profileStore) ListByRole(ctx context.Context, role model.Role) ([]model.UserProfile, error) {
	return s.repo.ListByRole(ctx, role)
}
