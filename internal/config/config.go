// Package config provides centralized configuration management for the admin
// programs. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// ImportConfig holds settings for the spreadsheet importer.
type ImportConfig struct {
	// Workbook is the .xlsx file to read; one sheet per province.
	Workbook string `env:"IMPORT_WORKBOOK" default:"data/Copy of กรุงเทพ-ปริมณฑล.xlsx"`

	// OutputSQL is where the generated script is written.
	OutputSQL string `env:"IMPORT_OUTPUT_SQL" default:"scripts/import_stores.sql"`

	// UploadsDir receives copied banner images, one folder per store id.
	UploadsDir string `env:"IMPORT_UPLOADS_DIR" default:"backend/src/Nightnice.Api/uploads/stores"`

	// UploadsURLPrefix is the web path that UploadsDir is served under.
	UploadsURLPrefix string `env:"IMPORT_UPLOADS_URL_PREFIX" default:"/uploads/stores"`

	// ImageRoots are searched in order for "<root>/<sheet>/<n> <sheet>.<ext>".
	ImageRoots []string `env:"IMPORT_IMAGE_ROOTS" default:"data/ภาคกลาง,data/รูปภาพสถานประกอบการ,data/รูปภาพสถานประกอบการ ครั้ง 2/ภาคเหนือ,data/รูปภาพสถานประกอบการ ครั้ง 2/ภาคใต้,data/รูปภาพสถานประกอบการ ครั้ง 2/ภาคอีสาน"`

	// Apply executes the generated statements against DatabaseURL.
	Apply bool `env:"IMPORT_APPLY" default:"false"`

	// DatabaseURL is only required when Apply is set.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// StatementTimeout bounds each applied statement (default: 30s)
	StatementTimeout time.Duration `env:"IMPORT_STATEMENT_TIMEOUT" default:"30s"`

	Database DatabaseConfig
	Logging  LoggingConfig
}

// MigrateConfig holds settings for the remote-to-local copier.
type MigrateConfig struct {
	// RemoteURL is the source PostgreSQL connection string (required)
	RemoteURL string `env:"REMOTE_DATABASE_URL" required:"true"`

	// LocalURL is the destination PostgreSQL connection string (required)
	// Supports both LOCAL_DATABASE_URL and DATABASE_URL.
	LocalURL string `env:"LOCAL_DATABASE_URL" envAlt:"DATABASE_URL" required:"true"`

	// EventsLimit caps how many active events are copied (default: 100)
	EventsLimit int `env:"MIGRATE_EVENTS_LIMIT" default:"100"`

	// RowTimeout bounds each single-row upsert transaction (default: 30s)
	RowTimeout time.Duration `env:"MIGRATE_ROW_TIMEOUT" default:"30s"`

	Database DatabaseConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds connection pool settings shared by both programs.
type DatabaseConfig struct {
	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// ConnectTimeout bounds the initial connect and ping (default: 15s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"15s"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// String returns a safe representation for logging.
func (c *ImportConfig) String() string {
	var b strings.Builder
	b.WriteString("ImportConfig{")
	b.WriteString(fmt.Sprintf("Workbook: %q, OutputSQL: %q, UploadsDir: %q, ", c.Workbook, c.OutputSQL, c.UploadsDir))
	b.WriteString(fmt.Sprintf("ImageRoots: %d, Apply: %v, ", len(c.ImageRoots), c.Apply))
	b.WriteString(fmt.Sprintf("DatabaseURL: %s, ", maskURL(c.DatabaseURL)))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

// String returns a safe representation for logging.
// Both connection strings are masked.
func (c *MigrateConfig) String() string {
	var b strings.Builder
	b.WriteString("MigrateConfig{")
	b.WriteString(fmt.Sprintf("Remote: %s, Local: %s, ", maskURL(c.RemoteURL), maskURL(c.LocalURL)))
	b.WriteString(fmt.Sprintf("Database: {MaxConns: %d, MinConns: %d}, ", c.Database.MaxConns, c.Database.MinConns))
	b.WriteString(fmt.Sprintf("EventsLimit: %d, ", c.EventsLimit))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

func maskURL(u string) string {
	if u == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
