package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/learnhub/internal/entity"
	activityRepo "anoa.com/learnhub/internal/modules/activity/repository"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	handler "anoa.com/learnhub/internal/modules/course/delivery/http"
	"anoa.com/learnhub/internal/modules/course/repository"
	"anoa.com/learnhub/internal/modules/course/service"
	userRepo "anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestCourseRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	inst := testutil.CreateUser(t, db, roles[entity.RoleInstructor], "teach")
	student := testutil.CreateUser(t, db, roles[entity.RoleStudent], "kid")

	repo := repository.NewCourseRepository(db)
	svc := service.NewCourseService(repo, userRepo.NewUserRepository(db), nil, service.NewViewCounter(nil, repo), nil,
		activity.NewActivityService(activityRepo.NewActivityRepository(db)))
	h := handler.NewCourseHandler(svc)

	r := gin.New()
	r.POST("/inst/courses", as(inst), h.Create)
	r.POST("/kid/courses", as(student), h.Create)
	r.GET("/courses", as(nil), h.List)
	r.GET("/courses/:id", as(nil), h.GetBySlug)
	r.POST("/inst/courses/:id/publish", as(inst), h.Publish)
	r.POST("/inst/courses/:id/thumbnail", as(inst), h.UploadThumbnail)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/inst/courses", bytes.NewBufferString(`{"title":"Go"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/kid/courses", bytes.NewBufferString(`{"title":"Go Course"}`)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/inst/courses", bytes.NewBufferString(`{"title":"Go Course","price":0}`)))
	require.Equal(t, http.StatusCreated, w.Code)

	var course entity.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &course))
	assert.Equal(t, "go-course", course.Slug)

	// drafts are invisible to anonymous callers
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/go-course", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/inst/courses/not-a-uuid/publish", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	testutil.CreateLesson(t, db, course.ID, 1, entity.LessonTypeText, `{"body":"x"}`)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/inst/courses/"+course.ID.String()+"/publish", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/go-course", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lesson_count":1`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_items":1`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/inst/courses/"+course.ID.String()+"/thumbnail", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
