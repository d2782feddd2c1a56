package repository_test

import (
	"context"
	"errors"
	"testing"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/internal/testutil"
	"anoa.com/learnhub/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateAndFind(t *testing.T) {
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	student := roles[entity.RoleStudent]
	user := &entity.User{Username: "ann", Email: "ann@example.com", PasswordHash: "hash", RoleID: &student.ID, IsActive: true}
	require.NoError(t, repo.Create(ctx, user, &entity.Profile{FullName: "Ann Lee"}))

	found, err := repo.FindByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, entity.RoleStudent, found.RoleName())
	require.NotNil(t, found.Profile)
	assert.Equal(t, "Ann Lee", found.Profile.FullName)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestListFiltersByRoleAndCounts(t *testing.T) {
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, roles[entity.RoleStudent], "s1")
	testutil.CreateUser(t, db, roles[entity.RoleStudent], "s2")
	testutil.CreateUser(t, db, roles[entity.RoleInstructor], "teach")

	page := dto.PageQuery{Page: 1, Limit: 10}
	users, total, err := repo.List(ctx, repository.UserFilter{Role: entity.RoleStudent, PageQuery: page})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)

	users, total, err = repo.List(ctx, repository.UserFilter{Search: "TEA", PageQuery: page})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "teach", users[0].Username)

	counts, err := repo.CountByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[entity.RoleStudent])
	assert.Equal(t, int64(1), counts[entity.RoleInstructor])
}

func TestUpdateSavesProfile(t *testing.T) {
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, roles[entity.RoleStudent], "bob")
	loaded, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)

	loaded.IsActive = false
	loaded.Profile.FullName = "Bob Builder"
	require.NoError(t, repo.Update(ctx, loaded, loaded.Profile))

	again, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive)
	assert.Equal(t, "Bob Builder", again.Profile.FullName)
}
