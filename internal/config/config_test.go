package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 60*time.Second, cfg.DraftTimeout)
	assert.Equal(t, "TIMEOUT", cfg.DefaultAutoBanLeaderID)
	assert.Equal(t, 50, cfg.ChatHistoryLimit)
	assert.Equal(t, "local", cfg.PubSubDriver)
	assert.Equal(t, "draft.events", cfg.NATSSubject)
	assert.Empty(t, cfg.ClickHouseAddr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("DRAFT_TIMEOUT_SECONDS", "5")
	t.Setenv("DEFAULT_AUTO_BAN_MAP_ID", "PANGAEA")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "memory", cfg.DatabaseDriver)
	assert.Equal(t, 5*time.Second, cfg.DraftTimeout)
	assert.Equal(t, "PANGAEA", cfg.DefaultAutoBanMapID)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	// godotenv never overrides variables that are already set.
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseDriver:   "memory",
			DraftTimeout:     time.Minute,
			PubSubDriver:     "local",
			ChatHistoryLimit: 50,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero timeout", mutate: func(c *Config) { c.DraftTimeout = 0 }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.DatabaseDriver = "mongo" }, wantErr: true},
		{name: "postgres without url", mutate: func(c *Config) { c.DatabaseDriver = "postgres" }, wantErr: true},
		{name: "sqlite with url", mutate: func(c *Config) { c.DatabaseDriver = "sqlite"; c.DatabaseURL = "draft.db" }},
		{name: "unknown pubsub", mutate: func(c *Config) { c.PubSubDriver = "kafka" }, wantErr: true},
		{name: "nats without url", mutate: func(c *Config) { c.PubSubDriver = "nats" }, wantErr: true},
		{name: "embedded nats", mutate: func(c *Config) { c.PubSubDriver = "embedded-nats" }},
		{name: "zero chat limit", mutate: func(c *Config) { c.ChatHistoryLimit = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
