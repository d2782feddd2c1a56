package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_TTL_MINUTES", "90")
	t.Setenv("RATE_LIMIT_DISCUSSION", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 30*time.Second, cfg.RateLimitDiscussion)
	assert.Equal(t, 5*time.Second, cfg.RateLimitGlobal)
	assert.Equal(t, 24*time.Hour, cfg.PaymentIntentTTL)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("RATE_LIMIT_GLOBAL", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "RATE_LIMIT_GLOBAL")
}
