package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anoa.com/learnhub/internal/entity"
	activityRepo "anoa.com/learnhub/internal/modules/activity/repository"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	handler "anoa.com/learnhub/internal/modules/certificate/delivery/http"
	"anoa.com/learnhub/internal/modules/certificate/dto"
	"anoa.com/learnhub/internal/modules/certificate/repository"
	"anoa.com/learnhub/internal/modules/certificate/service"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	enrollmentRepo "anoa.com/learnhub/internal/modules/enrollment/repository"
	notifRepo "anoa.com/learnhub/internal/modules/notification/repository"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	"anoa.com/learnhub/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func as(user *entity.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set("user_id", user.ID.String())
			c.Set("role", user.RoleName())
		}
		c.Next()
	}
}

func pendingCertificate(t *testing.T, db *gorm.DB, userID, courseID uuid.UUID) *entity.Certificate {
	t.Helper()
	c := &entity.Certificate{
		UserID:       userID,
		CourseID:     courseID,
		EnrollmentID: uuid.New(),
		Status:       entity.CertificatePending,
		RequestedAt:  time.Now(),
	}
	require.NoError(t, db.Omit("User", "Course").Create(c).Error)
	return c
}

func TestReviewAndVerifyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	owner := testutil.CreateUser(t, db, roles[entity.RoleInstructor], "owner")
	grader := testutil.CreateUser(t, db, roles[entity.RoleAssessor], "grader")
	outsider := testutil.CreateUser(t, db, roles[entity.RoleAssessor], "outsider")
	first := testutil.CreateUser(t, db, roles[entity.RoleStudent], "first")
	second := testutil.CreateUser(t, db, roles[entity.RoleStudent], "second")

	course := testutil.CreateCourse(t, db, owner.ID, "go", entity.CourseStatusPublished, 0)
	require.NoError(t, db.Omit("Course", "Assessor").Create(&entity.CourseAssessor{CourseID: course.ID, AssessorID: grader.ID}).Error)

	svc := service.NewCertificateService(
		repository.NewCertificateRepository(db),
		courseRepo.NewCourseRepository(db),
		enrollmentRepo.NewEnrollmentRepository(db),
		notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil),
		nil,
		activity.NewActivityService(activityRepo.NewActivityRepository(db)),
	)
	h := handler.NewCertificateHandler(svc)

	r := gin.New()
	r.POST("/grader/certificates/:id/approve", as(grader), h.Approve)
	r.POST("/grader/certificates/:id/reject", as(grader), h.Reject)
	r.POST("/outsider/certificates/:id/approve", as(outsider), h.Approve)
	r.POST("/outsider/certificates/:id/reject", as(outsider), h.Reject)
	r.GET("/certificates/verify/:number", h.Verify)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	toApprove := pendingCertificate(t, db, first.ID, course.ID)
	toReject := pendingCertificate(t, db, second.ID, course.ID)

	// an assessor not assigned to the course cannot decide
	assert.Equal(t, http.StatusForbidden, send(http.MethodPost, "/outsider/certificates/"+toApprove.ID.String()+"/approve", "").Code)
	assert.Equal(t, http.StatusForbidden, send(http.MethodPost, "/outsider/certificates/"+toReject.ID.String()+"/reject", `{"reason":"not good enough"}`).Code)

	assert.Equal(t, http.StatusNotFound, send(http.MethodPost, "/grader/certificates/"+uuid.NewString()+"/approve", "").Code)
	assert.Equal(t, http.StatusBadRequest, send(http.MethodPost, "/grader/certificates/oops/approve", "").Code)

	w := send(http.MethodPost, "/grader/certificates/"+toApprove.ID.String()+"/approve", "")
	require.Equal(t, http.StatusOK, w.Code)

	var approved entity.Certificate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &approved))
	assert.Equal(t, entity.CertificateApproved, approved.Status)
	require.NotNil(t, approved.Number)

	assert.Equal(t, http.StatusConflict, send(http.MethodPost, "/grader/certificates/"+toApprove.ID.String()+"/approve", "").Code)

	// a reason is required
	assert.Equal(t, http.StatusBadRequest, send(http.MethodPost, "/grader/certificates/"+toReject.ID.String()+"/reject", `{}`).Code)

	w = send(http.MethodPost, "/grader/certificates/"+toReject.ID.String()+"/reject", `{"reason":"final project missing"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var rejected entity.Certificate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rejected))
	assert.Equal(t, entity.CertificateRejected, rejected.Status)
	assert.Nil(t, rejected.Number)

	w = send(http.MethodGet, "/certificates/verify/"+strings.ToLower(*approved.Number), "")
	require.Equal(t, http.StatusOK, w.Code)
	var verified dto.VerificationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verified))
	assert.True(t, verified.Valid)
	assert.Equal(t, *approved.Number, verified.Number)
	assert.Equal(t, "go", verified.CourseTitle)

	assert.Equal(t, http.StatusNotFound, send(http.MethodGet, "/certificates/verify/LH-20200101-00000000", "").Code)
}
