package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/middleware"
	"anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/internal/modules/user/service"
	"anoa.com/learnhub/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*gin.Engine, *service.TokenIssuer, map[string]*entity.User, repository.UserRepository) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	repo := repository.NewUserRepository(db)
	tokens := service.NewTokenIssuer("secret", time.Hour)
	auth := middleware.NewAuthMiddleware(repo, tokens)

	users := map[string]*entity.User{
		entity.RoleAdmin:   testutil.CreateUser(t, db, roles[entity.RoleAdmin], "root"),
		entity.RoleStudent: testutil.CreateUser(t, db, roles[entity.RoleStudent], "kid"),
	}

	r := gin.New()
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString("user_id"), "role": c.GetString("role")})
	})
	r.GET("/admin", auth.RequireAuth(), auth.RequireRoles(entity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/maybe", auth.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString("role")})
	})
	return r, tokens, users, repo
}

func do(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r, tokens, users, _ := setup(t)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)

	token, _, err := tokens.Issue(users[entity.RoleStudent].ID)
	require.NoError(t, err)

	w := do(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"student"`)

	// token in the query string for websocket clients
	w = do(r, "/me?token="+token, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthRejectsInactive(t *testing.T) {
	r, tokens, users, repo := setup(t)
	ctx := context.Background()

	u, err := repo.FindByID(ctx, users[entity.RoleStudent].ID)
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, repo.Update(ctx, u, nil))

	token, _, err := tokens.Issue(u.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, "/me", token).Code)
}

func TestRequireRoles(t *testing.T) {
	r, tokens, users, _ := setup(t)

	studentToken, _, _ := tokens.Issue(users[entity.RoleStudent].ID)
	adminToken, _, _ := tokens.Issue(users[entity.RoleAdmin].ID)

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", studentToken).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", adminToken).Code)
}

func TestOptionalAuth(t *testing.T) {
	r, tokens, users, _ := setup(t)

	w := do(r, "/maybe", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":""`)

	w = do(r, "/maybe", "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":""`)

	token, _, err := tokens.Issue(users[entity.RoleAdmin].ID)
	require.NoError(t, err)
	w = do(r, "/maybe", token)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}
