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
	t.Setenv("LEDGER_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "9446", cfg.HTTPPort)
	assert.Equal(t, 4, cfg.OperatorWorkers)
	assert.Equal(t, "refuse", cfg.AccountDeletePolicy)
	assert.Equal(t, 10*time.Minute, cfg.PendingStaleAfter)
	assert.Equal(t, 100*time.Millisecond, cfg.NotifyDebounce)
	assert.Equal(t, "KES", cfg.DefaultCurrency)
	assert.Equal(t, "Africa/Nairobi", cfg.SMSTimezone)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	content := "store: memory\naccount_delete_policy: cascade\npending_stale_after: 1m\nhttp_port: \"7000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("LEDGER_CONFIG", path)
	t.Setenv("HTTP_PORT", "8123")
	t.Setenv("OPERATOR_WORKERS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "cascade", cfg.AccountDeletePolicy)
	assert.Equal(t, time.Minute, cfg.PendingStaleAfter)
	assert.Equal(t, "8123", cfg.HTTPPort)
	assert.Equal(t, 1, cfg.OperatorWorkers)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("LEDGER_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid store", func(t *testing.T) {
		t.Setenv("LEDGER_CONFIG", "")
		t.Setenv("STORE", "sqlite")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown store")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{Store: StoreMemory, AccountDeletePolicy: "refuse", OperatorWorkers: 2, PendingStaleAfter: time.Minute}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown policy", mutate: func(c *Config) { c.AccountDeletePolicy = "orphan" }, wantErr: true},
		{name: "zero stale window", mutate: func(c *Config) { c.PendingStaleAfter = 0 }, wantErr: true},
		{name: "negative workers are clamped", mutate: func(c *Config) { c.OperatorWorkers = -3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.GreaterOrEqual(t, c.OperatorWorkers, 1)
		})
	}
}

func TestConfig_PostgresURL(t *testing.T) {
	c := Config{
		PostgresUsername: "ledger",
		PostgresPassword: "secret",
		PostgresAddress:  "db",
		PostgresPort:     "5432",
		PostgresDB:       "budget",
	}
	assert.Equal(t, "postgres://ledger:secret@db:5432/budget?sslmode=disable", c.PostgresURL())
}
