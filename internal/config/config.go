// Package config handles application configuration loading from a YAML file
// with environment variable overrides.
package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "servicelog/internal/utils"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Hosted table store (the remote row store owning all durability)
	TableStore TableStoreConfig `json:"table_store" yaml:"table_store"`

	// Dashboard view thresholds and window sizes
	Dashboard DashboardConfig `json:"dashboard" yaml:"dashboard"`

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port        string   `json:"port" yaml:"port"`
	Debug       bool     `json:"debug" yaml:"debug"`
	LogLevel    string   `json:"log_level" yaml:"log_level"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// TableStoreConfig represents the connection settings for the hosted table store
type TableStoreConfig struct {
	URL            string `json:"url" yaml:"url"`
	APIKey         string `json:"api_key" yaml:"api_key"`
	PageSize       int    `json:"page_size" yaml:"page_size"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// DashboardConfig represents thresholds for the aggregation/reporting views.
// Zero values fall back to the defaults in constants.go.
type DashboardConfig struct {
	OverdueAfterDays    int `json:"overdue_after_days" yaml:"overdue_after_days"`
	UrgentDisplayCount  int `json:"urgent_display_count" yaml:"urgent_display_count"`
	TrendWindowDays     int `json:"trend_window_days" yaml:"trend_window_days"`
	SeriesWindowDays    int `json:"series_window_days" yaml:"series_window_days"`
	RollupLimit         int `json:"rollup_limit" yaml:"rollup_limit"`
	RecentLimit         int `json:"recent_limit" yaml:"recent_limit"`
	ResolutionClampDays int `json:"resolution_clamp_days" yaml:"resolution_clamp_days"`
	WarrantyWindowDays  int `json:"warranty_window_days" yaml:"warranty_window_days"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "http://localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "servicelog-backend"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`   // Default: true
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`   // Default: true
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`   // Default: true
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"`     // Default: 1.0 (100%)
}

// OverdueAfterDaysOrDefault returns the overdue threshold with the default applied.
func (d *DashboardConfig) OverdueAfterDaysOrDefault() int {
	if d.OverdueAfterDays <= 0 {
		return DefaultOverdueAfterDays
	}
	return d.OverdueAfterDays
}

// UrgentDisplayCountOrDefault returns the urgent-list display cap with the default applied.
func (d *DashboardConfig) UrgentDisplayCountOrDefault() int {
	if d.UrgentDisplayCount <= 0 {
		return DefaultUrgentDisplayCount
	}
	return d.UrgentDisplayCount
}

// TrendWindowDaysOrDefault returns the month-over-month comparison window with the default applied.
func (d *DashboardConfig) TrendWindowDaysOrDefault() int {
	if d.TrendWindowDays <= 0 {
		return DefaultTrendWindowDays
	}
	return d.TrendWindowDays
}

// SeriesWindowDaysOrDefault returns the time-series trailing window with the default applied.
func (d *DashboardConfig) SeriesWindowDaysOrDefault() int {
	if d.SeriesWindowDays <= 0 {
		return DefaultSeriesWindowDays
	}
	return d.SeriesWindowDays
}

// RollupLimitOrDefault returns the per-technician/per-customer top-N size with the default applied.
func (d *DashboardConfig) RollupLimitOrDefault() int {
	if d.RollupLimit <= 0 {
		return DefaultRollupLimit
	}
	return d.RollupLimit
}

// RecentLimitOrDefault returns the recent-activity list size with the default applied.
func (d *DashboardConfig) RecentLimitOrDefault() int {
	if d.RecentLimit <= 0 {
		return DefaultRecentLimit
	}
	return d.RecentLimit
}

// ResolutionClampDaysOrDefault returns the resolution-time outlier cutoff with the default applied.
func (d *DashboardConfig) ResolutionClampDaysOrDefault() int {
	if d.ResolutionClampDays <= 0 {
		return DefaultResolutionClampDays
	}
	return d.ResolutionClampDays
}

// WarrantyWindowDaysOrDefault returns the expiring-warranty lookahead with the default applied.
func (d *DashboardConfig) WarrantyWindowDaysOrDefault() int {
	if d.WarrantyWindowDays <= 0 {
		return DefaultWarrantyWindowDays
	}
	return d.WarrantyWindowDays
}

// PageSizeOrDefault returns the fetch page size with the default applied.
func (t *TableStoreConfig) PageSizeOrDefault() int {
	if t.PageSize <= 0 {
		return DefaultPageSize
	}
	return t.PageSize
}

// TimeoutSecondsOrDefault returns the per-request store timeout in seconds
// with the default applied.
func (t *TableStoreConfig) TimeoutSecondsOrDefault() int {
	if t.TimeoutSeconds <= 0 {
		return int(StoreRequestTimeout / time.Second)
	}
	return t.TimeoutSeconds
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (result0 *Config, err error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	config.overrideFromEnv()

	return config, nil
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnv(c)
}

// overrideStructFromEnv recursively overrides struct fields with environment variables
func overrideStructFromEnv(v interface{}) {
	overrideStructFromEnvWithPrefix(v, "")
}

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		// Get the yaml tag for the field
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Convert yaml tag to environment variable name
		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				// Handle string slices (like CORS_ORIGINS)
				if field.Type().Elem().Kind() == reflect.String {
					slice := strings.Split(envVal, ",")
					field.Set(reflect.ValueOf(slice))
				}
			}
		case reflect.Struct:
			// Recursively process nested structs with the field name as prefix
			if field.CanAddr() {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), fieldPrefix)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file with potential local overrides
func loadConfigWithOverrides() (result0 *Config, err error) {
	// Try to load from environment variable first
	if envPath := os.Getenv("SERVICELOG_CONFIG_FILE"); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	// If no environment variable is set, try default config.yaml
	return loadConfigFromFile("config.yaml")
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
