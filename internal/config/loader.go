package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// LoadImport reads importer configuration from environment variables.
// It applies defaults for unset values and validates the result.
func LoadImport() (*ImportConfig, error) {
	cfg := &ImportConfig{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadMigrate reads copier configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func LoadMigrate() (*MigrateConfig, error) {
	cfg := &MigrateConfig{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		// Comma-separated; order is preserved because image roots are searched in order.
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the importer configuration is valid.
// Returns an error describing all validation failures.
func (c *ImportConfig) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Workbook) == "" {
		errs = append(errs, "IMPORT_WORKBOOK is required")
	}
	if strings.TrimSpace(c.OutputSQL) == "" {
		errs = append(errs, "IMPORT_OUTPUT_SQL is required")
	}
	if strings.TrimSpace(c.UploadsDir) == "" {
		errs = append(errs, "IMPORT_UPLOADS_DIR is required")
	}
	if !strings.HasPrefix(c.UploadsURLPrefix, "/") {
		errs = append(errs, fmt.Sprintf("IMPORT_UPLOADS_URL_PREFIX (%q) must start with /", c.UploadsURLPrefix))
	}
	if c.Apply && c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required when IMPORT_APPLY is true")
	}
	if c.StatementTimeout <= 0 {
		errs = append(errs, "IMPORT_STATEMENT_TIMEOUT must be positive")
	}

	errs = append(errs, c.Database.validate()...)
	errs = append(errs, c.Logging.validate()...)

	return joinErrors(errs)
}

// Validate checks that the copier configuration is valid.
func (c *MigrateConfig) Validate() error {
	var errs []string

	if c.RemoteURL == "" {
		errs = append(errs, "REMOTE_DATABASE_URL is required")
	}
	if c.LocalURL == "" {
		errs = append(errs, "LOCAL_DATABASE_URL is required")
	}
	if c.RemoteURL != "" && c.RemoteURL == c.LocalURL {
		errs = append(errs, "REMOTE_DATABASE_URL and LOCAL_DATABASE_URL must differ")
	}
	if c.EventsLimit <= 0 {
		errs = append(errs, "MIGRATE_EVENTS_LIMIT must be positive")
	}
	if c.RowTimeout <= 0 {
		errs = append(errs, "MIGRATE_ROW_TIMEOUT must be positive")
	}

	errs = append(errs, c.Database.validate()...)
	errs = append(errs, c.Logging.validate()...)

	return joinErrors(errs)
}

func (d DatabaseConfig) validate() []string {
	var errs []string
	if d.MaxConns < d.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			d.MaxConns, d.MinConns))
	}
	if d.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if d.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}
	if d.ConnectTimeout <= 0 {
		errs = append(errs, "DB_CONNECT_TIMEOUT must be positive")
	}
	return errs
}

func (l LoggingConfig) validate() []string {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(l.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(l.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", l.Format))
	}
	return errs
}

func joinErrors(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
