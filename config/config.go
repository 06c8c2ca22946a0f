// Package config loads the exporter configuration from YAML, the process
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dataclassification/logger"
)

var (
	ErrMissingDriver = errors.New("database.driver is required")
	ErrMissingDSN    = errors.New("database connection is not configured")
	ErrBadDriver     = errors.New("unsupported database.driver")
)

// Config mirrors config.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Query    QueryConfig    `yaml:"query"`
	Filter   FilterConfig   `yaml:"filter"`
	Export   ExportConfig   `yaml:"export"`
	Store    StoreConfig    `yaml:"store"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  logger.Config  `yaml:"logging"`
	Workers  int            `yaml:"workers"` // 0 = one per logical CPU
}

type DatabaseConfig struct {
	Driver     string        `yaml:"driver"` // sqlserver, pgx, sqlite, sqlite3
	DSN        string        `yaml:"dsn"`    // takes precedence over host/name/user/password
	Host       string        `yaml:"host"`
	Name       string        `yaml:"name"`
	User       string        `yaml:"user"`
	Password   string        `yaml:"password"`
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

type QueryConfig struct {
	From            string `yaml:"from"` // YYYY-MM-DD, inclusive
	To              string `yaml:"to"`   // YYYY-MM-DD, inclusive
	UserName        string `yaml:"user_name"`
	OrganizationIDs []int  `yaml:"organization_ids"`
	Timezone        string `yaml:"timezone"`
	PartitionEpoch  string `yaml:"partition_epoch"` // day numbered partition 0
}

type FilterConfig struct {
	Users            []string `yaml:"users"`
	ExcludeProcesses []string `yaml:"exclude_processes"`
}

type ExportConfig struct {
	XLSX            string `yaml:"xlsx"`
	CSV             string `yaml:"csv"`
	MaxRowsPerSheet int    `yaml:"max_rows_per_sheet"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the settings used for keys absent from the file. Database
// credentials come from DB_DRIVER, DB_HOST, DB_NAME, DB_USER and DB_PASSWORD.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:     getEnvOrDefault("DB_DRIVER", "sqlserver"),
			Host:       os.Getenv("DB_HOST"),
			Name:       os.Getenv("DB_NAME"),
			User:       os.Getenv("DB_USER"),
			Password:   os.Getenv("DB_PASSWORD"),
			Retries:    3,
			RetryDelay: 5 * time.Second,
		},
		Query: QueryConfig{
			OrganizationIDs: []int{77, 78, 98, 143, 185, 186, 190},
			Timezone:        "America/Sao_Paulo",
			PartitionEpoch:  "2023-12-31",
		},
		Export: ExportConfig{
			XLSX:            "dados_classificados.xlsx",
			CSV:             "dados_classificados.csv",
			MaxRowsPerSheet: 1_000_000,
		},
		Logging: logger.DefaultConfig(),
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the YAML file at path, expands ${VAR} references and validates
// the result. An empty path yields the environment-based defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		rawBytes, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		contentWithEnv := os.ExpandEnv(string(rawBytes))

		if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "":
		return ErrMissingDriver
	case "sqlserver", "pgx", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("%w: %q", ErrBadDriver, c.Database.Driver)
	}
	if c.Database.DSN == "" && c.Database.Host == "" && c.Database.Name == "" {
		return ErrMissingDSN
	}
	if c.Database.Retries < 1 {
		c.Database.Retries = 1
	}
	if c.Export.MaxRowsPerSheet <= 0 {
		return fmt.Errorf("export.max_rows_per_sheet must be positive, got %d", c.Export.MaxRowsPerSheet)
	}
	if _, err := time.LoadLocation(c.Query.Timezone); err != nil {
		return fmt.Errorf("query.timezone: %w", err)
	}
	if _, err := time.Parse(time.DateOnly, c.Query.PartitionEpoch); err != nil {
		return fmt.Errorf("query.partition_epoch: %w", err)
	}
	return nil
}

// ConnectionString returns the DSN for the configured driver.
func (d DatabaseConfig) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}

	switch d.Driver {
	case "sqlserver":
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(d.User, d.Password),
			Host:     d.Host,
			RawQuery: url.Values{"database": {d.Name}}.Encode(),
		}
		return u.String()
	case "pgx":
		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(d.User, d.Password),
			Host:   d.Host,
			Path:   "/" + d.Name,
		}
		return u.String()
	default:
		return d.Name
	}
}

// Location returns the time zone date ranges are expressed in.
func (q QueryConfig) Location() *time.Location {
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}
