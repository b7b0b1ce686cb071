package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileEnvAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
jwt:
  secret_key: from-file
redis:
  addr: cache:6379
`), 0o600))

	t.Setenv("PORTAL_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("PORTAL_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "from-file", cfg.JWT.SecretKey)
	assert.Equal(t, "redis.internal:6380", cfg.RedisConfig.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "/api/v1", cfg.Server.BasePath)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout())
	assert.Equal(t, 15*time.Minute, cfg.TTL.PresignedDuration())
	assert.EqualValues(t, 10<<20, cfg.Upload.MaxFileSize)
}

func TestLoadConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("PORTAL_JWT_SECRET_KEY", "env-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWT.SecretKey)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("PORTAL_JWT_SECRET_KEY", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "jwt.secret_key")
}

func TestParseDuration_Fallback(t *testing.T) {
	assert.Equal(t, 5*time.Second, ServerConfig{ShutdownTimeout: "soon"}.Shutdown())
	assert.Equal(t, 5*time.Second, ServerConfig{ShutdownTimeout: "-1s"}.Shutdown())
	assert.Equal(t, 2*time.Second, ServerConfig{ShutdownTimeout: "2s"}.Shutdown())
}
