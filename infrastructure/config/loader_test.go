package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/case-tracker/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string        `yaml:"name"    env:"TEST_CFG_NAME"`
	Port    int           `yaml:"port"    env:"TEST_CFG_PORT"`
	TTL     time.Duration `yaml:"ttl"     env:"TEST_CFG_TTL"`
	Debug   bool          `yaml:"debug"   env:"TEST_CFG_DEBUG"`
	Tables  []string      `yaml:"tables"  env:"TEST_CFG_TABLES"`
	Nested  nestedConfig  `yaml:"nested"`
	Pointer *nestedConfig `yaml:"pointer"`
}

type nestedConfig struct {
	Rate float64 `yaml:"rate" env:"TEST_CFG_RATE"`
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, "name: from-yaml\nport: 8080\nttl: 5m\ntables: [cases]\nnested:\n  rate: 1.5\n")
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_TABLES", "cases, bns ,,db")
	t.Setenv("TEST_CFG_RATE", "2.5")

	cfg, err := config.Load[testConfig](path, false)
	require.NoError(t, err)

	assert.Equal(t, "from-yaml", cfg.Name)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
	assert.Equal(t, []string{"cases", "bns", "db"}, cfg.Tables)
	assert.InDelta(t, 2.5, cfg.Nested.Rate, 0.0001)
	require.NotNil(t, cfg.Pointer)
	assert.InDelta(t, 2.5, cfg.Pointer.Rate, 0.0001)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	missing := filepath.Join(t.TempDir(), "nope.yml")

	_, err := config.Load[testConfig](missing, false)
	require.Error(t, err)

	cfg, err := config.Load[testConfig](missing, true)
	require.NoError(t, err)
	assert.Empty(t, cfg.Name)
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, "port: 1\n")
	t.Setenv("TEST_CFG_TTL", "soon")

	_, err := config.Load[testConfig](path, false)

	var validationErr *config.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "TEST_CFG_TTL", validationErr.Field)
}

func TestLoadWithDefaults_EnvBeatsDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, "name: svc\n")
	t.Setenv("TEST_CFG_DEBUG", "yes")

	cfg, err := config.LoadWithDefaults(path, false, func(c *testConfig) {
		if c.Port == 0 {
			c.Port = 8080
		}
		c.Debug = false
	})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Debug)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.env"), []byte("TEST_CFG_NAME=from-dotenv\n"), 0o600))
	t.Setenv("ENV_FILE", "custom.env")
	t.Setenv("TEST_CFG_NAME", "")
	os.Unsetenv("TEST_CFG_NAME")

	cfg, err := config.Load[testConfig](writeConfig(t, "name: from-yaml\n"), false)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Name)
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/case-tracker.yml")
	assert.Equal(t, "/etc/case-tracker.yml", config.GetConfigPath("config.yml"))
}

func TestValidators(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.ValidatePort("service.port", 8080))
	require.Error(t, config.ValidatePort("service.port", 0))
	require.Error(t, config.ValidateRequired("database.host", ""))
	require.NoError(t, config.ValidateLogLevel("logging.level", "warn"))
	require.Error(t, config.ValidateLogLevel("logging.level", "loud"))
	require.NoError(t, config.ValidatePositive("snapshot.ttl", 5*time.Minute))
	require.Error(t, config.ValidatePositive("rate_limit.rps", 0.0))
}
