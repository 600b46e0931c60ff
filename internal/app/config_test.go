package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Listen)
	assert.Equal(t, "/api/v1", cfg.App.APIPrefix)
	assert.Equal(t, "0 2 * * *", cfg.Collect.Cron)
	assert.Equal(t, time.Hour, cfg.Collect.TimeLimit())
	assert.Equal(t, 30*time.Minute, cfg.Collect.SoftTimeLimit())
	assert.Equal(t, 4, cfg.Collect.Workers)
	assert.Equal(t, "/data", cfg.Collect.DataDir)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  environment: staging
  api_prefix: api/v2/
database:
  driver: sqlite
  dsn: file:test.db
collect:
  queue: memory
  workers: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("BACKEND_CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("COLLECT_WORKERS", "6")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, "/api/v2", cfg.App.APIPrefix)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, QueueMemory, cfg.Collect.Queue)
	assert.Equal(t, 6, cfg.Collect.Workers)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.HTTP.CORSOrigins)
}

func TestValidateRejects(t *testing.T) {
	base := Config{}
	base.Defaults()
	require.NoError(t, base.Validate())

	cfg := base
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.Collect.Queue = "kafka"
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.Collect.SoftTimeLimitSeconds = cfg.Collect.TimeLimitSeconds + 1
	assert.Error(t, cfg.Validate())
}

func TestApplyEnvRejectsBadNumber(t *testing.T) {
	var cfg Config
	err := cfg.applyEnv(func(key string) (string, bool) {
		if key == "REDIS_DB" {
			return "zero", true
		}
		return "", false
	})
	assert.Error(t, err)
}
