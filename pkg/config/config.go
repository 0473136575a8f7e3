package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for assetmodeler.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values.
// Secrets (the database password) must only come from the environment.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL destination store)
	Database DatabaseConfig `yaml:"database"`

	// Converter configuration
	Converter ConverterConfig `yaml:"converter"`
}

// DatabaseConfig holds PostgreSQL destination store configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"assetmodeler"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"assetmodeler"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// ConverterConfig holds the normalization engine's settings.
type ConverterConfig struct {
	// HierarchyMaxDepth bounds placeholder model generation, usually set
	// to the max hierarchy depth the destination store allows.
	HierarchyMaxDepth int `yaml:"hierarchy_max_depth" env:"HIERARCHY_MAX_DEPTH" env-default:"10"`

	// TagAliasPrefix replaces the bracketed OPC source prefix in
	// resolved tag paths. May later carry an identifier for a specific
	// Ignition instance.
	TagAliasPrefix string `yaml:"tag_alias_prefix" env:"TAG_ALIAS_PREFIX" env-default:"/Tag Providers/default"`

	// TagBlacklistStr is a comma-separated list of top-level member
	// names excluded from the asset walk.
	TagBlacklistStr string `yaml:"tag_blacklist" env:"TAG_BLACKLIST" env-default:"Sim Controls"`

	// TagBlacklist is the parsed list from TagBlacklistStr.
	TagBlacklist []string `yaml:"-"`

	// WriteDelay is the pause between successive destination writes,
	// respecting downstream rate limits.
	WriteDelay time.Duration `yaml:"write_delay" env:"WRITE_DELAY" env-default:"100ms"`

	// SaveSnapshots enables writing intermediate and final collections
	// to JSON files for diagnostics.
	SaveSnapshots bool `yaml:"save_snapshots" env:"SAVE_SNAPSHOTS" env-default:"false"`

	// SnapshotDir is where snapshot files are written.
	SnapshotDir string `yaml:"snapshot_dir" env:"SNAPSHOT_DIR" env-default:"."`
}

// Load reads configuration from config.yaml with environment variable
// overrides. When no config.yaml exists, configuration comes from the
// environment alone. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.parseComplexFields(); err != nil {
		return nil, fmt.Errorf("failed to parse config fields: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() error {
	c.Converter.TagBlacklist = parseNameList(c.Converter.TagBlacklistStr)
	return nil
}

func (c *Config) validate() error {
	if c.Converter.HierarchyMaxDepth < 1 {
		return fmt.Errorf("hierarchy_max_depth must be at least 1, got %d", c.Converter.HierarchyMaxDepth)
	}
	if c.Converter.WriteDelay < 0 {
		return fmt.Errorf("write_delay must not be negative")
	}
	return nil
}

// parseNameList splits a comma-separated name list, trimming whitespace
// and dropping empty entries.
func parseNameList(value string) []string {
	if value == "" {
		return nil
	}

	var names []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
