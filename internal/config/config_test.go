package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development", DataPath: "/var/lib/versemark"},
		Logger:    LoggerConfig{Level: "info"},
		Store:     StoreConfig{Backend: BackendSQLite, DeleteBatchSize: 100},
		Scripture: ScriptureConfig{Source: ScriptureFromStore, CacheSize: 10000},
		RateLimit: RateLimitConfig{RPS: 20, Burst: 40},
	}
}

// isolate clears every variable Load reads so the host environment cannot leak in.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "DATA_PATH", "STORE_BACKEND", "STORE_DELETE_BATCH_SIZE",
		"PALETTE_FILE", "SCRIPTURE_SOURCE", "SCRIPTURE_API_URL", "SCRIPTURE_CACHE_SIZE",
		"SCRIPTURE_API_RPS", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"SERVER_IDLE_TIMEOUT", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"log level", func(c *Config) { c.Logger.Level = "verbose" }, "invalid log level"},
		{"backend", func(c *Config) { c.Store.Backend = "postgres" }, "invalid store backend"},
		{"batch size", func(c *Config) { c.Store.DeleteBatchSize = 0 }, "batch size"},
		{"scripture source", func(c *Config) { c.Scripture.Source = "ftp" }, "invalid scripture source"},
		{"http without url", func(c *Config) { c.Scripture.Source = ScriptureFromHTTP }, "SCRIPTURE_API_URL"},
		{"empty data path", func(c *Config) { c.App.DataPath = "" }, "data path"},
		{"rate limit", func(c *Config) { c.RateLimit.Burst = 0 }, "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, filepath.Join(home, ".versemark"), cfg.App.DataPath)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, 100, cfg.Store.DeleteBatchSize)
	assert.Equal(t, ScriptureFromStore, cfg.Scripture.Source)
	assert.Equal(t, int64(10000), cfg.Scripture.CacheSize)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 20.0, cfg.RateLimit.RPS, 0.001)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	envFile := filepath.Join(dir, "test.env")
	content := "# comment\nSTORE_BACKEND=badger\nLOG_LEVEL=\"debug\"\nSTORE_DELETE_BATCH_SIZE=25\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// Real env beats the file, flags beat both.
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load([]string{
		"-env-file", envFile,
		"-data-path", dir,
		"-port", "9100",
	})
	require.NoError(t, err)

	assert.Equal(t, BackendBadger, cfg.Store.Backend)
	assert.Equal(t, 25, cfg.Store.DeleteBatchSize)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, dir, cfg.App.DataPath)
	assert.Equal(t, filepath.Join(dir, "badger"), cfg.BadgerPath())
}

func TestLoad_InvalidDuration(t *testing.T) {
	isolate(t)

	_, err := Load([]string{"-env-file", "", "-read-timeout", "soon"})
	assert.ErrorContains(t, err, "read timeout")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/bible", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "bible"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a , ,http://b"))
	assert.Nil(t, splitList(""))
}
