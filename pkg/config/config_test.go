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
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	p := writeConfig(t, `
environment: test
server:
  port: 9000
metrics:
  enabled: false
predictor:
  scaler_path: /srv/scaler.json
  model_path: /srv/model.json
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 9000, c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Server.ShutdownTimeout)
	assert.False(t, c.Metrics.Enabled, "explicit false must survive defaults")
	assert.Equal(t, BackendLocal, c.Predictor.Backend)
	assert.Equal(t, 3, c.Predictor.Retries)
	assert.Equal(t, "info", c.Log.Level)
	assert.True(t, c.Cache.Enabled)
	assert.Equal(t, 30*time.Second, c.Cache.TTL)
	assert.False(t, c.Cache.Redis.Enabled)
	assert.Equal(t, 2*time.Second, c.Cache.Redis.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing scaler": `
predictor:
  model_path: m.json
`,
		"missing model for local": `
predictor:
  scaler_path: s.json
`,
		"missing url for http": `
predictor:
  backend: http
  scaler_path: s.json
`,
		"bad backend": `
predictor:
  backend: onnx
  scaler_path: s.json
  model_path: m.json
`,
		"bad log level": `
log:
  level: verbose
predictor:
  scaler_path: s.json
  model_path: m.json
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_HTTPBackendWithoutModelPath(t *testing.T) {
	c, err := Load(writeConfig(t, `
predictor:
  backend: http
  scaler_path: s.json
  url: http://127.0.0.1:9100
`))
	require.NoError(t, err)
	assert.Equal(t, BackendHTTP, c.Predictor.Backend)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadWithEnv_EnvOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LIQ_SCALER_PATH", "/env/scaler.json")
	t.Setenv("LIQ_MODEL_PATH", "/env/model.json")
	t.Setenv("LIQ_HTTP_PORT", "8088")
	t.Setenv("LIQ_REDIS_ADDR", "redis:6379")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/env/scaler.json", c.Predictor.ScalerPath)
	assert.Equal(t, "/env/model.json", c.Predictor.ModelPath)
	assert.Equal(t, 8088, c.Server.Port)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "redis:6379", c.Cache.Redis.Addr)
}

func TestLoadWithEnv_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LIQ_SCALER_PATH=/dotenv/s.json\nLIQ_MODEL_PATH=/dotenv/m.json\n"), 0o600))
	// godotenv does not override variables that are already set
	t.Setenv("LIQ_SCALER_PATH", "")
	t.Setenv("LIQ_MODEL_PATH", "")
	os.Unsetenv("LIQ_SCALER_PATH")
	os.Unsetenv("LIQ_MODEL_PATH")

	c, err := LoadWithEnv("")
	require.NoError(t, err)
	assert.Equal(t, "/dotenv/s.json", c.Predictor.ScalerPath)
	assert.Equal(t, "/dotenv/m.json", c.Predictor.ModelPath)
}

func TestLoadWithEnv_BadPort(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LIQ_SCALER_PATH", "s.json")
	t.Setenv("LIQ_MODEL_PATH", "m.json")
	t.Setenv("LIQ_HTTP_PORT", "eighty")

	_, err := LoadWithEnv("")
	assert.Error(t, err)
}

func TestLoadWithEnv_OverridesApplyBeforeValidation(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LIQ_SCALER_PATH", "/env/scaler.json")

	// model_path is missing until the override sets it
	c, err := LoadWithEnv("", func(c *Config) {
		c.Predictor.ModelPath = "/flag/model.json"
		c.Predictor.ScalerPath = "/flag/scaler.json"
	})
	require.NoError(t, err)
	assert.Equal(t, "/flag/scaler.json", c.Predictor.ScalerPath)
	assert.Equal(t, "/flag/model.json", c.Predictor.ModelPath)
}
