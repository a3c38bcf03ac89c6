package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Supported source file encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Export   ExportConfig
	Sources  SourcesConfig
}

// ServerConfig holds HTTP server and logging configuration.
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// ExportConfig controls where enriched tables are written.
type ExportConfig struct {
	// Dir is the default directory for CSV and GeoJSON output.
	Dir string
	// SQLitePath is the scratch database written by the CLI; empty disables it.
	SQLitePath string
	// Table is the name of the enriched table in SQLite and PostgreSQL.
	Table string
}

// SourcesConfig controls how source tables are read.
type SourcesConfig struct {
	// Encoding of CSV exports: utf-8 or windows-1252.
	Encoding string
}

// Load reads configuration for the HTTP server, which needs a database.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadForCLI reads configuration for the reconcile CLI, which works on files
// and does not require database settings.
func LoadForCLI() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if err := cfg.validateCommon(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// load reads environment variables, and CONFIG_FILE when it is set.
func load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_HOST", "host.docker.internal")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "devrights")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("EXPORT_DIR", "data/processed_data")
	v.SetDefault("EXPORT_SQLITE_PATH", "")
	v.SetDefault("EXPORT_TABLE", "Parcel_Transfers")
	v.SetDefault("SOURCE_ENCODING", EncodingUTF8)

	v.AutomaticEnv()

	// An optional config file; environment variables still win.
	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString("PORT"),
			Env:      v.GetString("ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseList(v.GetString("CORS_ORIGINS")),
		},
		Export: ExportConfig{
			Dir:        v.GetString("EXPORT_DIR"),
			SQLitePath: v.GetString("EXPORT_SQLITE_PATH"),
			Table:      v.GetString("EXPORT_TABLE"),
		},
		Sources: SourcesConfig{
			Encoding: strings.ToLower(strings.TrimSpace(v.GetString("SOURCE_ENCODING"))),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return c.validateCommon()
}

// validateCommon checks the settings shared by the server and the CLI.
func (c *Config) validateCommon() error {
	if !ValidTableName(c.Export.Table) {
		return fmt.Errorf("EXPORT_TABLE must be a plain identifier, got %q", c.Export.Table)
	}

	switch c.Sources.Encoding {
	case EncodingUTF8, EncodingWindows1252:
	default:
		return fmt.Errorf("SOURCE_ENCODING must be %s or %s, got %q", EncodingUTF8, EncodingWindows1252, c.Sources.Encoding)
	}

	return nil
}

// ValidTableName accepts letters, digits and underscores, not starting with a digit.
// The table name is interpolated into DDL, so nothing else is allowed.
func ValidTableName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// parseList splits a comma-separated string into trimmed, non-empty values.
func parseList(list string) []string {
	if list == "" {
		return []string{}
	}

	parts := strings.Split(list, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
