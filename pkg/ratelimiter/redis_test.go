package ratelimiter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/learnhub/internal/testutil"
	"anoa.com/learnhub/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardCooldownWindows(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := Guard(ctx, rdb, id, ScopeDiscussion, 2*time.Second, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key(id, ScopeGlobal)))
	assert.True(t, mr.Exists(key(id, ScopeDiscussion)))

	// global cooldown answers first
	_, err = Guard(ctx, rdb, id, ScopeDiscussion, 2*time.Second, 30*time.Second)
	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.True(t, errors.Is(err, apperror.ErrRateLimitExceeded))
	assert.InDelta(t, 2, rlErr.RetryAfter.Seconds(), 1)

	mr.FastForward(3 * time.Second)
	assert.False(t, mr.Exists(key(id, ScopeGlobal)))

	// the action cooldown is still running and the global lock taken for this attempt is released
	_, err = Guard(ctx, rdb, id, ScopeDiscussion, 2*time.Second, 30*time.Second)
	require.True(t, errors.As(err, &rlErr))
	assert.Contains(t, rlErr.Message, "before posting again")
	assert.InDelta(t, 27, rlErr.RetryAfter.Seconds(), 1)
	assert.False(t, mr.Exists(key(id, ScopeGlobal)))

	// another user is unaffected
	_, err = Guard(ctx, rdb, uuid.New(), ScopeDiscussion, 2*time.Second, 30*time.Second)
	assert.NoError(t, err)

	mr.FastForward(30 * time.Second)
	_, err = Guard(ctx, rdb, id, ScopeDiscussion, 2*time.Second, 30*time.Second)
	assert.NoError(t, err)
}

func TestGuardRollbackClearsLocks(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	ctx := context.Background()
	id := uuid.New()

	rollback, err := Guard(ctx, rdb, id, ScopeDiscussion, time.Minute, time.Minute)
	require.NoError(t, err)

	rollback()
	assert.False(t, mr.Exists(key(id, ScopeGlobal)))
	assert.False(t, mr.Exists(key(id, ScopeDiscussion)))

	_, err = Guard(ctx, rdb, id, ScopeDiscussion, time.Minute, time.Minute)
	assert.NoError(t, err)
}

func TestCheckAndSetRateLimitExpires(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	ctx := context.Background()
	id := uuid.New()

	allowed, err := CheckAndSetRateLimit(ctx, rdb, id, "upload", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CheckAndSetRateLimit(ctx, rdb, id, "upload", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, allowed)

	ttl, err := GetRateLimitTTL(ctx, rdb, id, "upload")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, ttl)

	mr.FastForward(11 * time.Second)
	allowed, err = CheckAndSetRateLimit(ctx, rdb, id, "upload", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestPerIPCountsAndResets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, rdb := testutil.NewRedis(t)

	r := gin.New()
	r.POST("/login", PerIP(rdb, "login", 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":40000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1").Code)

	blocked := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2").Code)

	count, err := mr.Get("rate_limit:login:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "3", count)

	mr.FastForward(61 * time.Second)
	assert.False(t, mr.Exists("rate_limit:login:10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1").Code)
}

func TestPerIPFailsOpenWhenRedisIsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, rdb := testutil.NewRedis(t)
	mr.Close()

	r := gin.New()
	r.GET("/", PerIP(rdb, "register", 1, time.Hour), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}
