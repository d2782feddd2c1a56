package service_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/course/repository"
	"anoa.com/learnhub/internal/modules/course/service"
	"anoa.com/learnhub/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const pendingViews = "pending:course_views"

func storedViews(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var c entity.Course
	require.NoError(t, db.First(&c, "id = ?", id).Error)
	return c.Views
}

func TestViewsAreBufferedThenSynced(t *testing.T) {
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	mr, rdb := testutil.NewRedis(t)
	ctx := context.Background()

	instructor := testutil.CreateUser(t, db, roles[entity.RoleInstructor], "lecturer")
	first := testutil.CreateCourse(t, db, instructor.ID, "first", entity.CourseStatusPublished, 0)
	second := testutil.CreateCourse(t, db, instructor.ID, "second", entity.CourseStatusPublished, 0)
	views := service.NewViewCounter(rdb, repository.NewCourseRepository(db))

	require.NoError(t, views.IncrementView(ctx, first.ID, "user-1"))
	require.NoError(t, views.IncrementView(ctx, first.ID, "user-1"))
	require.NoError(t, views.IncrementView(ctx, first.ID, "203.0.113.9"))
	require.NoError(t, views.IncrementView(ctx, second.ID, "user-1"))

	count, err := mr.Get("course:views:" + first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "2", count)

	pending, err := mr.Members(pendingViews)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ID.String(), second.ID.String()}, pending)

	// nothing reaches the database until the sync runs
	assert.Equal(t, 0, storedViews(t, db, first.ID))

	synced, err := views.SyncViews(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	assert.Equal(t, 2, storedViews(t, db, first.ID))
	assert.Equal(t, 1, storedViews(t, db, second.ID))
	assert.False(t, mr.Exists(pendingViews))
	assert.False(t, mr.Exists("course:views:"+first.ID.String()))

	synced, err = views.SyncViews(ctx)
	require.NoError(t, err)
	assert.Zero(t, synced)

	// the same viewer counts again once the hour has passed
	require.NoError(t, views.IncrementView(ctx, first.ID, "user-1"))
	mr.FastForward(time.Hour + time.Second)
	require.NoError(t, views.IncrementView(ctx, first.ID, "user-1"))

	synced, err = views.SyncViews(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	assert.Equal(t, 3, storedViews(t, db, first.ID))
}

func TestSyncViewsDropsUnparsableIDs(t *testing.T) {
	db := testutil.NewDB(t)
	mr, rdb := testutil.NewRedis(t)
	views := service.NewViewCounter(rdb, repository.NewCourseRepository(db))

	_, err := mr.SAdd(pendingViews, "not-a-course")
	require.NoError(t, err)

	synced, err := views.SyncViews(context.Background())
	require.NoError(t, err)
	assert.Zero(t, synced)
	assert.False(t, mr.Exists(pendingViews))
}
