package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const baseConfig = `
environment: test
server:
  port: 8000
  read_timeout: 10s
  write_timeout: 10s
  shutdown_timeout: 5s
logging:
  level: info
  format: json
  output: stdout
model:
  path: models/model.json
cache:
  enabled: true
  ttl: 5m
  max_size: 1000
`

func TestLoad(t *testing.T) {
	path := writeConfig(t, baseConfig)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 8000, c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, "models/model.json", c.Model.Path)
	assert.True(t, c.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, c.Cache.TTL)
	assert.False(t, c.Kafka.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "environment: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidateRequiresModelPath(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.path is required")
}

func TestValidateKafkaNeedsBrokers(t *testing.T) {
	path := writeConfig(t, baseConfig+`
kafka:
  enabled: true
  topic: predictions
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka.brokers")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, baseConfig)

	t.Setenv("MODEL_PATH", "/srv/artifacts/model.json")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("REDIS_HOST", "redis.internal")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/artifacts/model.json", c.Model.Path)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "redis.internal", c.Cache.Redis.Host)
}
