package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8765, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:8765", cfg.Server.Addr())
	assert.Equal(t, runtime.GOOS, cfg.Automation.Platform)
	assert.Equal(t, 10*time.Second, cfg.Automation.Timeout)
	assert.Equal(t, filepath.Join("Desktop", "businessnxtdocs"), filepath.Join(filepath.Base(filepath.Dir(cfg.OutputDir)), filepath.Base(cfg.OutputDir)))
	assert.False(t, cfg.MinIO.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("OUTPUT_DIR", "/tmp/drop")
	t.Setenv("AUTOMATION_TIMEOUT", "3s")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MINIO_TIMEOUT", "750ms")

	cfg := Load()

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/drop", cfg.OutputDir)
	assert.Equal(t, 3*time.Second, cfg.Automation.Timeout)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 750*time.Millisecond, cfg.MinIO.Timeout)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attachbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8800
outputDir: /srv/drop
automation:
  platform: darwin
  timeout: 4s
log:
  level: debug
minio:
  endpoint: localhost:9000
  accessKey: key
  secretKey: secret
  bucket: copies
`), 0o600))

	t.Run("file values", func(t *testing.T) {
		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 8800, cfg.Server.Port)
		assert.Equal(t, "/srv/drop", cfg.OutputDir)
		assert.Equal(t, "darwin", cfg.Automation.Platform)
		assert.Equal(t, 4*time.Second, cfg.Automation.Timeout)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.MinIO.Enabled())
		assert.NoError(t, cfg.Validate())
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("PORT", "8900")
		t.Setenv("AUTOMATION_PLATFORM", "windows")

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 8900, cfg.Server.Port)
		assert.Equal(t, "windows", cfg.Automation.Platform)
		assert.Equal(t, "/srv/drop", cfg.OutputDir)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("broken yaml", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("server: ["), 0o600))
		_, err := LoadFile(bad)
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		cfg, err := LoadFile("")
		require.NoError(t, err)
		assert.Equal(t, 8765, cfg.Server.Port)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"port zero", func(c *AppConfig) { c.Server.Port = 0 }},
		{"port too large", func(c *AppConfig) { c.Server.Port = 70000 }},
		{"no output dir", func(c *AppConfig) { c.OutputDir = "" }},
		{"zero timeout", func(c *AppConfig) { c.Automation.Timeout = 0 }},
		{"bad log format", func(c *AppConfig) { c.Log.Format = "xml" }},
		{"partial minio", func(c *AppConfig) { c.MinIO.Endpoint = "localhost:9000" }},
		{"zero minio timeout", func(c *AppConfig) {
			c.MinIO = MinIOConfig{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "b"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	t.Setenv(key, "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvDuration(key, time.Second))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}
