package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniportal/internal/auth"
	"uniportal/internal/authflow"
	"uniportal/internal/cache"
	"uniportal/internal/db"
	"uniportal/internal/model"
	"uniportal/internal/repository"
	"uniportal/internal/service"
)

const seedFile = `[
  {"role":"student","name":"Ada","email":"001234567@gre.ac.uk","password":"password123","department":"Computing","student_id":"001234567"},
  {"role":"staff","name":"Grace","email":"abc123@gre.ac.uk","password":"password123","department":"Maths","staff_id":"abc123"},
  {"role":"student","name":"Ada Again","email":"001234567@gre.ac.uk","password":"other-password","department":"Computing","student_id":"001234567"},
  {"role":"staff","name":"Bad Domain","email":"x@example.com","password":"password123","department":"Maths","staff_id":"xyz1"},
  {"role":"alumni","name":"Nobody","email":"n@gre.ac.uk","password":"password123"}
]`

func TestSeedAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	require.NoError(t, os.WriteFile(path, []byte(seedFile), 0o600))

	accounts, err := loadAccounts(path)
	require.NoError(t, err)
	require.Len(t, accounts, 5)
	assert.Equal(t, "abc123", accounts[1].StaffID)

	gdb, err := db.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, true))
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	c := cache.NewWithClient(rc)

	gateway := service.NewIdentityGateway(repository.NewIdentityRepository(gdb), auth.NewJWTService("s", "uniportal"), auth.NewTokenStore(c))
	profiles := service.NewProfileStore(repository.NewProfileRepository(gdb), c)
	flow := authflow.New(authflow.NewValidator(authflow.DefaultDomain), gateway, profiles, service.NewRoleCache(c))

	stats := seedAccounts(context.Background(), flow, accounts, "seed")
	assert.Equal(t, seedStats{created: 2, skipped: 1, failed: 2}, stats)

	staff, err := profiles.ListByRole(context.Background(), model.RoleStaff)
	require.NoError(t, err)
	assert.Len(t, staff, 1)
}

func TestLoadAccounts_Errors(t *testing.T) {
	_, err := loadAccounts(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"role":`), 0o600))
	_, err = loadAccounts(path)
	assert.ErrorContains(t, err, "failed to parse JSON")
}
