package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"anoa.com/learnhub/internal/entity"
	activityRepo "anoa.com/learnhub/internal/modules/activity/repository"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	"anoa.com/learnhub/internal/modules/enrollment/repository"
	"anoa.com/learnhub/internal/modules/enrollment/service"
	lessonRepo "anoa.com/learnhub/internal/modules/lesson/repository"
	notifRepo "anoa.com/learnhub/internal/modules/notification/repository"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	userRepo "anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/internal/testutil"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentMail struct {
	to, subject string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(ctx context.Context, toName, toEmail, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: toEmail, subject: subject})
	return nil
}

type fixture struct {
	db            *gorm.DB
	svc           service.EnrollmentService
	notifications notification.NotificationService
	mail          *recordingMailer
	owner         commonDto.Actor
	student       commonDto.Actor
	free          *entity.Course
	paid          *entity.Course
}

func newFixture(t *testing.T) fixture {
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	owner := testutil.CreateUser(t, db, roles[entity.RoleInstructor], "owner")
	student := testutil.CreateUser(t, db, roles[entity.RoleStudent], "learner")

	users := userRepo.NewUserRepository(db)
	mail := &recordingMailer{}
	notifications := notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)

	svc := service.NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		courseRepo.NewCourseRepository(db),
		lessonRepo.NewLessonRepository(db),
		notifications,
		notification.NewUserMailer(users, mail),
		activity.NewActivityService(activityRepo.NewActivityRepository(db)),
	)

	return fixture{
		db:            db,
		svc:           svc,
		notifications: notifications,
		mail:          mail,
		owner:         commonDto.Actor{ID: owner.ID, Role: entity.RoleInstructor},
		student:       commonDto.Actor{ID: student.ID, Role: entity.RoleStudent},
		free:          testutil.CreateCourse(t, db, owner.ID, "free", entity.CourseStatusPublished, 0),
		paid:          testutil.CreateCourse(t, db, owner.ID, "paid", entity.CourseStatusPublished, 4900),
	}
}

func TestEnrollRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Enroll(ctx, f.student, f.paid.ID)
	assert.True(t, errors.Is(err, apperror.ErrPaymentRequired))

	_, err = f.svc.Enroll(ctx, f.owner, f.free.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	enrollment, err := f.svc.Enroll(ctx, f.student, f.free.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EnrollmentActive, enrollment.Status)

	_, err = f.svc.Enroll(ctx, f.student, f.free.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "learner@example.com", f.mail.sent[0].to)

	unread, err := f.notifications.UnreadCount(ctx, f.student.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	draft := testutil.CreateCourse(t, f.db, f.owner.ID, "draft", entity.CourseStatusDraft, 0)
	_, err = f.svc.Enroll(ctx, f.student, draft.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCompleteLessonProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l1 := testutil.CreateLesson(t, f.db, f.free.ID, 1, entity.LessonTypeText, `{"body":"a"}`)
	l2 := testutil.CreateLesson(t, f.db, f.free.ID, 2, entity.LessonTypeVideo, `{"url":"https://v"}`)
	l3 := testutil.CreateLesson(t, f.db, f.free.ID, 3, entity.LessonTypeText, `{"body":"c"}`)
	quiz := testutil.CreateLesson(t, f.db, f.free.ID, 4, entity.LessonTypeQuiz, `{"passing_score":50,"questions":[]}`)

	_, err := f.svc.CompleteLesson(ctx, f.student, l1.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.svc.Enroll(ctx, f.student, f.free.ID)
	require.NoError(t, err)

	res, err := f.svc.CompleteLesson(ctx, f.student, l1.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, res.Enrollment.Progress)
	assert.Equal(t, 4, res.Enrollment.TotalLessons)

	again, err := f.svc.CompleteLesson(ctx, f.student, l1.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)
	assert.Equal(t, 25, again.Enrollment.Progress)

	_, err = f.svc.CompleteLesson(ctx, f.student, quiz.ID)
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))

	_, err = f.svc.CompleteLesson(ctx, f.student, l2.ID)
	require.NoError(t, err)
	_, err = f.svc.CompleteLesson(ctx, f.student, l3.ID)
	require.NoError(t, err)

	res, err = f.svc.RecordCompletion(ctx, f.student.ID, quiz)
	require.NoError(t, err)
	assert.True(t, res.CourseCompleted)
	assert.Equal(t, 100, res.Enrollment.Progress)
	assert.Equal(t, entity.EnrollmentCompleted, res.Enrollment.Status)
	assert.NotNil(t, res.Enrollment.CompletedAt)

	mine, err := f.svc.ListMine(ctx, f.student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0].CompletedLessonIDs, 4)
	require.NotNil(t, mine[0].Course)
	assert.Equal(t, "free", mine[0].Course.Slug)
}

func TestGrantIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, created, err := f.svc.Grant(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := f.svc.Grant(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestCancelAndReEnroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enrollment, err := f.svc.Enroll(ctx, f.student, f.free.ID)
	require.NoError(t, err)

	err = f.svc.Cancel(ctx, f.owner, enrollment.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	require.NoError(t, f.svc.Cancel(ctx, f.student, enrollment.ID))
	err = f.svc.Cancel(ctx, f.student, enrollment.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	again, err := f.svc.Enroll(ctx, f.student, f.free.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.ID, again.ID)
	assert.Equal(t, entity.EnrollmentActive, again.Status)
}

func TestListByCourseOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Enroll(ctx, f.student, f.free.ID)
	require.NoError(t, err)

	_, err = f.svc.ListByCourse(ctx, f.student, f.free.ID, commonDto.PageQuery{})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	res, err := f.svc.ListByCourse(ctx, f.owner, f.free.ID, commonDto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.EqualValues(t, 1, res.Meta.TotalItems)
	require.NotNil(t, res.Data[0].User)
	assert.Equal(t, "learner", res.Data[0].User.Username)
}
