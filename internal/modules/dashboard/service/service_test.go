package service_test

import (
	"context"
	"testing"

	"anoa.com/learnhub/internal/entity"
	certificateRepo "anoa.com/learnhub/internal/modules/certificate/repository"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	"anoa.com/learnhub/internal/modules/dashboard/service"
	enrollmentRepo "anoa.com/learnhub/internal/modules/enrollment/repository"
	paymentRepo "anoa.com/learnhub/internal/modules/payment/repository"
	userRepo "anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/internal/testutil"
	commonDto "anoa.com/learnhub/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardPerRole(t *testing.T) {
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	admin := testutil.CreateUser(t, db, roles[entity.RoleAdmin], "root")
	owner := testutil.CreateUser(t, db, roles[entity.RoleInstructor], "owner")
	assessor := testutil.CreateUser(t, db, roles[entity.RoleAssessor], "checker")
	alice := testutil.CreateUser(t, db, roles[entity.RoleStudent], "alice")
	bob := testutil.CreateUser(t, db, roles[entity.RoleStudent], "bob")

	published := testutil.CreateCourse(t, db, owner.ID, "published", entity.CourseStatusPublished, 500)
	testutil.CreateCourse(t, db, owner.ID, "draft", entity.CourseStatusDraft, 0)

	require.NoError(t, db.Create(&entity.Enrollment{UserID: alice.ID, CourseID: published.ID, Status: entity.EnrollmentActive, Progress: 40}).Error)
	require.NoError(t, db.Create(&entity.Enrollment{UserID: bob.ID, CourseID: published.ID, Status: entity.EnrollmentCompleted, Progress: 100}).Error)
	require.NoError(t, db.Create(&entity.Certificate{UserID: bob.ID, CourseID: published.ID, Status: entity.CertificatePending}).Error)
	require.NoError(t, db.Create(&entity.PaymentIntent{UserID: alice.ID, CourseID: published.ID, Amount: 500, Currency: "USD", Status: entity.PaymentSucceeded, ProviderRef: "pi_a"}).Error)
	require.NoError(t, db.Create(&entity.PaymentIntent{UserID: bob.ID, CourseID: published.ID, Amount: 500, Currency: "USD", Status: entity.PaymentPending, ProviderRef: "pi_b"}).Error)

	courses := courseRepo.NewCourseRepository(db)
	require.NoError(t, courses.ReplaceAssessors(context.Background(), published.ID, []uuid.UUID{assessor.ID}))

	svc := service.NewDashboardService(
		userRepo.NewUserRepository(db),
		courses,
		enrollmentRepo.NewEnrollmentRepository(db),
		certificateRepo.NewCertificateRepository(db),
		paymentRepo.NewPaymentRepository(db),
	)
	ctx := context.Background()

	t.Run("admin", func(t *testing.T) {
		d, err := svc.Get(ctx, commonDto.Actor{ID: admin.ID, Role: entity.RoleAdmin})
		require.NoError(t, err)
		require.NotNil(t, d.Admin)
		assert.Nil(t, d.Student)
		assert.EqualValues(t, 2, d.Admin.UsersByRole[entity.RoleStudent])
		assert.EqualValues(t, 1, d.Admin.CoursesByStatus[entity.CourseStatusDraft])
		assert.EqualValues(t, 1, d.Admin.EnrollmentsByStatus[entity.EnrollmentCompleted])
		assert.EqualValues(t, 1, d.Admin.PendingCertificates)
		assert.EqualValues(t, 500, d.Admin.RevenueByCurrency["USD"])
	})

	t.Run("instructor", func(t *testing.T) {
		d, err := svc.Get(ctx, commonDto.Actor{ID: owner.ID, Role: entity.RoleInstructor})
		require.NoError(t, err)
		require.NotNil(t, d.Instructor)
		require.Len(t, d.Instructor.Courses, 2)
		assert.EqualValues(t, 2, d.Instructor.TotalEnrollments)
		for _, c := range d.Instructor.Courses {
			if c.ID == published.ID {
				assert.EqualValues(t, 2, c.Enrollments)
				assert.InDelta(t, 70.0, c.AverageProgress, 0.01)
			} else {
				assert.Zero(t, c.Enrollments)
			}
		}
	})

	t.Run("assessor", func(t *testing.T) {
		d, err := svc.Get(ctx, commonDto.Actor{ID: assessor.ID, Role: entity.RoleAssessor})
		require.NoError(t, err)
		require.NotNil(t, d.Assessor)
		require.Len(t, d.Assessor.Courses, 1)
		assert.Equal(t, "published", d.Assessor.Courses[0].Slug)
		assert.EqualValues(t, 1, d.Assessor.PendingCertificates)
	})

	t.Run("student", func(t *testing.T) {
		d, err := svc.Get(ctx, commonDto.Actor{ID: bob.ID, Role: entity.RoleStudent})
		require.NoError(t, err)
		require.NotNil(t, d.Student)
		require.Len(t, d.Student.Enrollments, 1)
		assert.Equal(t, 100, d.Student.Enrollments[0].Progress)
		assert.Equal(t, "published", d.Student.Enrollments[0].CourseTitle)
		assert.Len(t, d.Student.Certificates, 1)
	})
}
