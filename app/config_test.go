package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, name := range []string{
		"APP_ENV", "AUTH_TOKEN_MODE", "AUTH_SECRET", "LOGIN_MAX_ATTEMPTS", "LOGIN_LOCK_MINUTES",
		"IMAGE_ROOT", "ROSTER_DENYLIST", "ROSTER_WATCH", "LOGIN_THROTTLE_BASE_MS",
	} {
		t.Setenv(name, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, tokenModeJWT, cfg.TokenMode)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.LoginLockDuration)
	assert.Equal(t, 300*time.Millisecond, cfg.LoginThrottleBase)
	assert.Equal(t, "public/images", cfg.ImageRoot)
	assert.Nil(t, cfg.RosterDenylist)
	assert.False(t, cfg.RosterWatch)
	assert.False(t, cfg.Production())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_TOKEN_MODE", "STATIC")
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "-2")
	t.Setenv("LOGIN_LOCK_MINUTES", "30")
	t.Setenv("ROSTER_DENYLIST", " ada, ,grace ")
	t.Setenv("ROSTER_WATCH", "on")

	cfg, err := LoadConfig()
	require.NoError(t, err, "static mode needs no secret")

	assert.True(t, cfg.Production())
	assert.Equal(t, tokenModeStatic, cfg.TokenMode)
	assert.Equal(t, 5, cfg.LoginMaxAttempts, "non-positive values fall back")
	assert.Equal(t, 30*time.Minute, cfg.LoginLockDuration)
	assert.Equal(t, []string{"ada", "grace"}, cfg.RosterDenylist)
	assert.True(t, cfg.RosterWatch)
}

func TestEnvBoolOrDefault(t *testing.T) {
	t.Setenv("FC_FLAG", "maybe")
	assert.True(t, EnvBoolOrDefault("FC_FLAG", true))

	t.Setenv("FC_FLAG", "No")
	assert.False(t, EnvBoolOrDefault("FC_FLAG", true))
}
