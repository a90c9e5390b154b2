package repository

import (
	"context"

	"gorm.io/gorm"

	"uniportal/internal/model"
)

// ProfileRepository defines profile persistence operations. Profiles are
// written once and never updated here.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.UserProfile) error
	FindByIdentityID(ctx context.Context, identityID string) (*model.UserProfile, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.UserProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create inserts a profile. A second profile for the same identity fails
// with ErrDuplicate.
func (r *profileRepository) Create(ctx context.Context, profile *model.UserProfile) error {
	return translate(r.db.WithContext(ctx).Create(profile).Error)
}

// FindByIdentityID returns gorm.ErrRecordNotFound when the identity has no profile.
func (r *profileRepository) FindByIdentityID(ctx context.Context, identityID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := r.db.WithContext(ctx).Where("identity_id = ?", identityID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListByRole lists active profiles of one role, oldest first.
func (r *profileRepository) ListByRole(ctx context.Context, role model.Role) ([]model.UserProfile, error) {
	var profiles []model.UserProfile
	if err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", role, true).
		Order("created_at").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
