package ratelimiter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/learnhub/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientAlwaysAllows(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	allowed, err := CheckAndSetRateLimit(ctx, nil, id, ScopeDiscussion, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	rollback, err := Guard(ctx, nil, id, ScopeDiscussion, time.Second, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, rollback)
	rollback()
}

func TestRateLimitErrorWrapsSentinel(t *testing.T) {
	err := &RateLimitError{Message: "slow down", RetryAfter: 3 * time.Second}
	assert.True(t, errors.Is(err, apperror.ErrRateLimitExceeded))
	assert.Equal(t, http.StatusTooManyRequests, apperror.MapErrorToStatus(err))
}

func TestPerIPWithoutRedisPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", PerIP(nil, "login", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}
