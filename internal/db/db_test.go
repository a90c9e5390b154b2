package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	gdb, err := Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, gdb.Exec("SELECT 1").Error)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.EqualError(t, err, `unsupported database driver "oracle"`)
}

func TestMigrateReset(t *testing.T) {
	gdb, err := Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)

	require.NoError(t, Migrate(gdb, false))
	assert.True(t, gdb.Migrator().HasTable("user_profiles"))
	assert.True(t, gdb.Migrator().HasTable("identities"))

	require.NoError(t, gdb.Exec("INSERT INTO identities (id, email, password_hash) VALUES ('x', 'x@gre.ac.uk', 'h')").Error)
	require.NoError(t, Migrate(gdb, true))

	var count int64
	require.NoError(t, gdb.Table("identities").Count(&count).Error)
	assert.Zero(t, count)
}
