package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"agricare-server/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
serverAddr: ":8080"
jwt:
  secret_key: "test-secret"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, "30m", cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "168h", cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, 5, cfg.JWT.MaxRefreshTokensPerUser)
	assert.Equal(t, 3600, cfg.TTL.PresignURL)
}

// Отсутствие секрета подписи — фатальная ошибка запуска
func TestLoadConfig_MissingSecret(t *testing.T) {
	path := writeConfigFile(t, `
serverAddr: ":8080"
`)

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

// Заданные значения не перетираются дефолтами
func TestLoadConfig_ExplicitValues(t *testing.T) {
	path := writeConfigFile(t, `
jwt:
  secret_key: "test-secret"
  access_token_ttl: "15m"
  max_refresh_tokens_per_user: 3
TTL:
  prediction_cache: 600
  presign_url: 900
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "15m", cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 3, cfg.JWT.MaxRefreshTokensPerUser)
	assert.Equal(t, 600, cfg.TTL.PredictionCache)
	assert.Equal(t, 900, cfg.TTL.PresignURL)
}
