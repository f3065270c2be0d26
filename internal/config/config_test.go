package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: "localhost"
  port: "5432"
  user: "postgres"
  password: "postgres"
  dbname: "quizhost"
  sslmode: "disable"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.Grader.Model)
	assert.Equal(t, 5, cfg.Grader.TimeoutSec, "Таймаут оценщика по умолчанию - 5 секунд")
	assert.Equal(t, 24, cfg.Grader.VerdictTTLHrs)
	assert.Equal(t, 12, cfg.Auth.TokenTTLHrs)
	assert.Equal(t, "media", cfg.Media.Root)
	assert.Equal(t, 20, cfg.Media.MaxUploadMB)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: "localhost"
  port: "5432"
  user: "postgres"
  password: "postgres"
  dbname: "quizhost"
  sslmode: "disable"
grader:
  timeout_sec: 15
  model: "gpt-4o"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Grader.TimeoutSec)
	assert.Equal(t, "gpt-4o", cfg.Grader.Model)
}

func TestLoad_IncompleteDatabaseConfigFails(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: "localhost"
`)

	_, err := Load(path)

	assert.Error(t, err, "Без dbname и user конфигурация невалидна")
}
