package service_test

import (
	"context"
	"errors"
	"testing"

	"anoa.com/learnhub/internal/entity"
	activityDto "anoa.com/learnhub/internal/modules/activity/dto"
	activityRepo "anoa.com/learnhub/internal/modules/activity/repository"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	"anoa.com/learnhub/internal/modules/admin/dto"
	"anoa.com/learnhub/internal/modules/admin/service"
	"anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/internal/testutil"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      service.AdminService
	activity activity.ActivityService
	actor    commonDto.Actor
}

func newFixture(t *testing.T) fixture {
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	admin := testutil.CreateUser(t, db, roles[entity.RoleAdmin], "root")
	act := activity.NewActivityService(activityRepo.NewActivityRepository(db))
	return fixture{
		svc:      service.NewAdminService(repository.NewUserRepository(db), nil, act),
		activity: act,
		actor:    commonDto.Actor{ID: admin.ID, Role: entity.RoleAdmin},
	}
}

func TestCreateUserWithRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateUser(ctx, f.actor, dto.CreateUserInput{
		Username: "grader",
		Email:    "Grader@Example.com",
		Password: "password1",
		Role:     entity.RoleAssessor,
		FullName: "Grace Grader",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAssessor, res.Role.Name)
	assert.Equal(t, "grader@example.com", res.User.Email)

	_, err = f.svc.CreateUser(ctx, f.actor, dto.CreateUserInput{
		Username: "grader2", Email: "grader@example.com", Password: "password1", Role: entity.RoleStudent, FullName: "x",
	}, nil)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	logs, err := f.activity.List(ctx, activityDto.ActivityFilter{Action: activity.ActionUserCreated})
	require.NoError(t, err)
	assert.Len(t, logs.Data, 1)
}

func TestListUsersByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"s1", "s2", "s3"} {
		_, err := f.svc.CreateUser(ctx, f.actor, dto.CreateUserInput{
			Username: name, Email: name + "@example.com", Password: "password1", Role: entity.RoleStudent, FullName: name,
		}, nil)
		require.NoError(t, err)
	}

	page, err := f.svc.GetAllUsers(ctx, dto.UserListQuery{Role: entity.RoleStudent, PageQuery: commonDto.PageQuery{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Meta.TotalItems)
	assert.Equal(t, 2, page.Meta.TotalPages)
	for _, u := range page.Data {
		assert.Empty(t, u.User.PasswordHash)
	}
}

func TestUpdateUserRoleAndActivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateUser(ctx, f.actor, dto.CreateUserInput{
		Username: "teach", Email: "teach@example.com", Password: "password1", Role: entity.RoleStudent, FullName: "T",
	}, nil)
	require.NoError(t, err)

	inactive := false
	updated, err := f.svc.UpdateUser(ctx, f.actor, created.User.ID, dto.UpdateAdminUserInput{
		Role:     entity.RoleInstructor,
		IsActive: &inactive,
		FullName: "Teacher",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleInstructor, updated.Role.Name)
	assert.False(t, updated.User.IsActive)
	assert.Equal(t, "Teacher", updated.Profile.FullName)
}

func TestAdminCannotRemoveThemselves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.DeleteUser(ctx, f.actor, f.actor.ID)
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))

	inactive := false
	_, err = f.svc.UpdateUser(ctx, f.actor, f.actor.ID, dto.UpdateAdminUserInput{IsActive: &inactive}, nil)
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateUser(ctx, f.actor, dto.CreateUserInput{
		Username: "gone", Email: "gone@example.com", Password: "password1", Role: entity.RoleStudent, FullName: "G",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteUser(ctx, f.actor, created.User.ID))
	err = f.svc.DeleteUser(ctx, f.actor, created.User.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
