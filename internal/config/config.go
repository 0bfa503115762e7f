package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	PostgresAddress  string `koanf:"postgres_address"`
	PostgresPort     string `koanf:"postgres_port"`
	PostgresDB       string `koanf:"postgres_db"`
	PostgresUsername string `koanf:"postgres_username"`
	PostgresPassword string `koanf:"postgres_password"`
	MigrationsSource string `koanf:"migrations_source"`

	HTTPPort string `koanf:"http_port"`
	LogLevel string `koanf:"log_level"`

	Store               string        `koanf:"store"`
	OperatorWorkers     int           `koanf:"operator_workers"`
	AccountDeletePolicy string        `koanf:"account_delete_policy"`
	PendingStaleAfter   time.Duration `koanf:"pending_stale_after"`
	NotifyDebounce      time.Duration `koanf:"notify_debounce"`
	CategoryRules       string        `koanf:"category_rules"`
	DefaultCurrency     string        `koanf:"default_currency"`
	SMSTimezone         string        `koanf:"sms_timezone"`
}

// In all cases the default behavior should be for the docker compose setup
var defaults = map[string]interface{}{
	"postgres_address":  "localhost",
	"postgres_port":     "5433",
	"postgres_db":       "postgres",
	"postgres_username": "postgres",
	"postgres_password": "testpassword",
	"migrations_source": "file://migrations",

	"http_port": "9446",
	"log_level": "info",

	"store":                 StorePostgres,
	"operator_workers":      4,
	"account_delete_policy": "refuse",
	"pending_stale_after":   "10m",
	"notify_debounce":       "100ms",
	"category_rules":        "",
	"default_currency":      "KES",
	"sms_timezone":          "Africa/Nairobi",
}

// Load builds the configuration from, in increasing priority: built-in
// defaults, a .env file in the working directory, the YAML file named by
// LEDGER_CONFIG and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv("LEDGER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	switch c.AccountDeletePolicy {
	case "refuse", "cascade":
	default:
		return fmt.Errorf("config: unknown account delete policy %q", c.AccountDeletePolicy)
	}
	if c.OperatorWorkers < 1 {
		c.OperatorWorkers = 1
	}
	if c.PendingStaleAfter <= 0 {
		return errors.New("config: pending_stale_after must be positive")
	}
	return nil
}

func (c *Config) PostgresURL() string {
	return "postgres://" + c.PostgresUsername + ":" + c.PostgresPassword + "@" +
		c.PostgresAddress + ":" + c.PostgresPort + "/" + c.PostgresDB + "?sslmode=disable"
}
