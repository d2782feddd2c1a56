package service_test

import (
	"context"
	"errors"
	"testing"

	"anoa.com/learnhub/internal/entity"
	activityRepo "anoa.com/learnhub/internal/modules/activity/repository"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	enrollmentRepo "anoa.com/learnhub/internal/modules/enrollment/repository"
	enrollmentService "anoa.com/learnhub/internal/modules/enrollment/service"
	lessonRepo "anoa.com/learnhub/internal/modules/lesson/repository"
	notifRepo "anoa.com/learnhub/internal/modules/notification/repository"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	"anoa.com/learnhub/internal/modules/quiz/dto"
	"anoa.com/learnhub/internal/modules/quiz/generator"
	"anoa.com/learnhub/internal/modules/quiz/repository"
	"anoa.com/learnhub/internal/modules/quiz/service"
	"anoa.com/learnhub/internal/testutil"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const quizPayload = `{"passing_score":50,"questions":[
	{"id":"q1","prompt":"2+2","options":["3","4"],"answer_indexes":[1]},
	{"id":"q2","prompt":"primes","options":["2","4","5"],"answer_indexes":[0,2]}]}`

type stubGenerator struct {
	material string
}

func (g *stubGenerator) Generate(ctx context.Context, title, material string, questions int) ([]entity.QuizQuestion, error) {
	g.material = material
	out := make([]entity.QuizQuestion, questions)
	for i := range out {
		out[i] = entity.QuizQuestion{ID: "q", Prompt: title, Options: []string{"a", "b"}, AnswerIndexes: []int{0}}
	}
	return out, nil
}

func (g *stubGenerator) Close() {}

type fixture struct {
	db      *gorm.DB
	owner   commonDto.Actor
	student commonDto.Actor
	course  *entity.Course
	build   func(gen generator.QuizGenerator) service.QuizService
}

func newFixture(t *testing.T) fixture {
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	owner := testutil.CreateUser(t, db, roles[entity.RoleInstructor], "owner")
	student := testutil.CreateUser(t, db, roles[entity.RoleStudent], "learner")
	course := testutil.CreateCourse(t, db, owner.ID, "course", entity.CourseStatusPublished, 0)

	courses := courseRepo.NewCourseRepository(db)
	lessons := lessonRepo.NewLessonRepository(db)
	enrollments := enrollmentRepo.NewEnrollmentRepository(db)
	progress := enrollmentService.NewEnrollmentService(
		enrollments, courses, lessons,
		notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil),
		nil,
		activity.NewActivityService(activityRepo.NewActivityRepository(db)),
	)

	return fixture{
		db:      db,
		owner:   commonDto.Actor{ID: owner.ID, Role: entity.RoleInstructor},
		student: commonDto.Actor{ID: student.ID, Role: entity.RoleStudent},
		course:  course,
		build: func(gen generator.QuizGenerator) service.QuizService {
			return service.NewQuizService(repository.NewQuizRepository(db), lessons, courses, enrollments, progress, gen)
		},
	}
}

func (f fixture) enroll(t *testing.T) {
	require.NoError(t, f.db.Omit("User", "Course").Create(&entity.Enrollment{
		UserID: f.student.ID, CourseID: f.course.ID, Status: entity.EnrollmentActive,
	}).Error)
}

func TestSubmitScoresAndCompletes(t *testing.T) {
	f := newFixture(t)
	svc := f.build(nil)
	ctx := context.Background()

	quiz := testutil.CreateLesson(t, f.db, f.course.ID, 1, entity.LessonTypeQuiz, quizPayload)
	testutil.CreateLesson(t, f.db, f.course.ID, 2, entity.LessonTypeText, `{"body":"x"}`)

	_, err := svc.Submit(ctx, f.student, quiz.ID, [][]int{{1}, {0, 2}})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	f.enroll(t)

	failed, err := svc.Submit(ctx, f.student, quiz.ID, [][]int{{0}, {0}})
	require.NoError(t, err)
	assert.Equal(t, 1, failed.Attempt.AttemptNumber)
	assert.Equal(t, 0, failed.Attempt.Score)
	assert.False(t, failed.Attempt.Passed)
	assert.Nil(t, failed.Progress)

	passed, err := svc.Submit(ctx, f.student, quiz.ID, [][]int{{1}, {0}})
	require.NoError(t, err)
	assert.Equal(t, 2, passed.Attempt.AttemptNumber)
	assert.Equal(t, 50, passed.Attempt.Percentage)
	assert.True(t, passed.Attempt.Passed)
	require.NotNil(t, passed.Progress)
	assert.Equal(t, 50, passed.Progress.Enrollment.Progress)

	attempts, err := svc.ListAttempts(ctx, f.student, quiz.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 2, attempts[0].AttemptNumber)

	_, err = svc.Submit(ctx, f.student, quiz.ID, [][]int{{1}})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestSubmitRejectsNonQuiz(t *testing.T) {
	f := newFixture(t)
	svc := f.build(nil)
	f.enroll(t)

	text := testutil.CreateLesson(t, f.db, f.course.ID, 1, entity.LessonTypeText, `{"body":"x"}`)
	_, err := svc.Submit(context.Background(), f.student, text.ID, [][]int{{0}})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	text := testutil.CreateLesson(t, f.db, f.course.ID, 1, entity.LessonTypeText, `{"body":"<p>Goroutines are cheap.</p>"}`)

	_, err := f.build(nil).Generate(ctx, f.owner, text.ID, dto.GenerateQuizInput{})
	assert.True(t, errors.Is(err, apperror.ErrServiceUnavailable))

	gen := &stubGenerator{}
	svc := f.build(gen)

	_, err = svc.Generate(ctx, f.student, text.ID, dto.GenerateQuizInput{})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	draft, err := svc.Generate(ctx, f.owner, text.ID, dto.GenerateQuizInput{Questions: 3})
	require.NoError(t, err)
	assert.Len(t, draft.Questions, 3)
	assert.Equal(t, 70, draft.PassingScore)
	assert.Equal(t, "Goroutines are cheap.", gen.material)

	quiz := testutil.CreateLesson(t, f.db, f.course.ID, 2, entity.LessonTypeQuiz, quizPayload)
	_, err = svc.Generate(ctx, f.owner, quiz.ID, dto.GenerateQuizInput{})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}
