package bootstrap_test

import (
	"testing"

	"anoa.com/learnhub/internal/bootstrap"
	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedRolesIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, bootstrap.SeedRoles(db))
	require.NoError(t, bootstrap.SeedRoles(db))

	var count int64
	require.NoError(t, db.Model(&entity.Role{}).Count(&count).Error)
	assert.Equal(t, int64(len(entity.Roles)), count)
}

func TestSeedAdminUser(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, bootstrap.SeedRoles(db))

	require.NoError(t, bootstrap.SeedAdminUser(db, "root@example.com", "s3cret-pass"))
	require.NoError(t, bootstrap.SeedAdminUser(db, "root@example.com", "s3cret-pass"))

	var users []entity.User
	require.NoError(t, db.Preload("Role").Preload("Profile").Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, entity.RoleAdmin, users[0].Role.Name)
	assert.True(t, users[0].IsActive)
	require.NotNil(t, users[0].Profile)
	assert.Equal(t, "Administrator", users[0].Profile.FullName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("s3cret-pass")))
}
