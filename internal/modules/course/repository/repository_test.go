package repository_test

import (
	"context"
	"testing"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/course/repository"
	"anoa.com/learnhub/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	alice := testutil.CreateUser(t, db, roles[entity.RoleInstructor], "alice")
	bob := testutil.CreateUser(t, db, roles[entity.RoleInstructor], "bob")

	testutil.CreateCourse(t, db, alice.ID, "go-basics", entity.CourseStatusPublished, 0)
	testutil.CreateCourse(t, db, alice.ID, "go-advanced", entity.CourseStatusDraft, 0)
	testutil.CreateCourse(t, db, bob.ID, "rust-basics", entity.CourseStatusPublished, 1000)

	repo := repository.NewCourseRepository(db)
	ctx := context.Background()

	courses, total, err := repo.List(ctx, repository.CourseFilter{Statuses: []string{entity.CourseStatusPublished}, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, courses, 2)

	courses, total, err = repo.List(ctx, repository.CourseFilter{Search: "GO", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	courses, _, err = repo.List(ctx, repository.CourseFilter{Search: "basics", Statuses: []string{entity.CourseStatusPublished}, InstructorID: &bob.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "rust-basics", courses[0].Slug)
	require.NotNil(t, courses[0].Instructor)
	assert.Equal(t, "bob", courses[0].Instructor.Username)
}

func TestAssessorsAndViews(t *testing.T) {
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	inst := testutil.CreateUser(t, db, roles[entity.RoleInstructor], "inst")
	a1 := testutil.CreateUser(t, db, roles[entity.RoleAssessor], "a1")
	a2 := testutil.CreateUser(t, db, roles[entity.RoleAssessor], "a2")
	course := testutil.CreateCourse(t, db, inst.ID, "course", entity.CourseStatusPublished, 0)

	repo := repository.NewCourseRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAssessors(ctx, course.ID, []uuid.UUID{a1.ID, a2.ID}))
	require.NoError(t, repo.ReplaceAssessors(ctx, course.ID, []uuid.UUID{a2.ID}))

	ids, err := repo.ListAssessorIDs(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a2.ID}, ids)

	ok, err := repo.IsAssessor(ctx, course.ID, a1.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	courseIDs, err := repo.CourseIDsForAssessor(ctx, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{course.ID}, courseIDs)

	require.NoError(t, repo.AddViews(ctx, course.ID, 3))
	require.NoError(t, repo.AddViews(ctx, course.ID, 2))
	got, err := repo.FindByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Views)
}

func TestDeleteRemovesLessons(t *testing.T) {
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	inst := testutil.CreateUser(t, db, roles[entity.RoleInstructor], "inst")
	course := testutil.CreateCourse(t, db, inst.ID, "doomed", entity.CourseStatusDraft, 0)
	testutil.CreateLesson(t, db, course.ID, 1, entity.LessonTypeText, `{"body":"hi"}`)

	repo := repository.NewCourseRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, course.ID))

	count, err := repo.CountLessons(ctx, course.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	exists, err := repo.SlugExists(ctx, "doomed")
	require.NoError(t, err)
	assert.False(t, exists)
}
