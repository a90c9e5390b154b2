package service

import (
	"context"
	"strings"

	"uniportal/internal/authflow"
	"uniportal/internal/cache"
	"uniportal/internal/model"
)

// DefaultDevice is the device key used when the caller sends none.
const DefaultDevice = "default"

// RoleCache remembers the last role used on each device.
type RoleCache interface {
	authflow.RoleCache
	Role(ctx context.Context, device string) (model.Role, error)
}

type roleCache struct {
	cache *cache.Client
}

// NewRoleCache stores roles in Redis without expiry. Write failures are reported.
func NewRoleCache(c *cache.Client) RoleCache {
	return &roleCache{cache: c.Required()}
}

func (r *roleCache) key(device string) string {
	device = strings.TrimSpace(device)
	if device == "" {
		device = DefaultDevice
	}
	return "device:" + device + ":" + authflow.RoleCacheKey
}

func (r *roleCache) SetRole(ctx context.Context, device string, role model.Role) error {
	return r.cache.Set(ctx, r.key(device), []byte(role), 0)
}

// Role returns the cached role, or "" when the device has none.
func (r *roleCache) Role(ctx context.Context, device string) (model.Role, error) {
	data, err := r.cache.Get(ctx, r.key(device))
	if err != nil {
		return "", err
	}
	return model.Role(data), nil
}
