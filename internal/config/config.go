package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gosieve/adapters/excel"
	"gosieve/domain/table"
	"gosieve/internal/errors"
	"gosieve/internal/validation"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Cleaning  CleaningConfig  `json:"cleaning"`
	Export    ExportConfig    `json:"export"`
	Batch     BatchConfig     `json:"batch"`
	Profiling ProfilingConfig `json:"profiling"`
	Log       LogConfig       `json:"log"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string        `json:"port" validate:"required,numeric"`
	GinMode         string        `json:"gin_mode" validate:"oneof=debug release test"`
	MaxUploadMB     int           `json:"max_upload_mb" validate:"gte=1,lte=1024"`
	PreviewRows     int           `json:"preview_rows" validate:"gte=0,lte=10000"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" validate:"gt=0"`
}

// CleaningConfig holds data cleaning settings
type CleaningConfig struct {
	Sentinel float64 `json:"sentinel"`
}

// ExportConfig holds export settings
type ExportConfig struct {
	SheetName string `json:"sheet_name" validate:"required,max=31"`
	CSVBOM    bool   `json:"csv_bom"`
}

// BatchConfig holds batch run settings
type BatchConfig struct {
	Parallelism int `json:"parallelism" validate:"gte=1,lte=64"`
}

// ProfilingConfig holds pprof server settings
type ProfilingConfig struct {
	Enabled bool   `json:"enabled"`
	Port    string `json:"port" validate:"omitempty,numeric"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `json:"level" validate:"oneof=error warn info debug"`
}

// MaxUploadBytes returns the upload limit in bytes
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			GinMode:         "debug",
			MaxUploadMB:     50,
			PreviewRows:     20,
			ShutdownTimeout: 10 * time.Second,
		},
		Cleaning:  CleaningConfig{Sentinel: table.DefaultSentinel},
		Export:    ExportConfig{SheetName: excel.DefaultSheetName},
		Batch:     BatchConfig{Parallelism: 4},
		Profiling: ProfilingConfig{Port: "6060"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	defaults := Default()
	config := &Config{}

	config.Server = *loadServerConfig(defaults.Server)

	cleaningConfig, err := loadCleaningConfig(defaults.Cleaning)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cleaning configuration")
	}
	config.Cleaning = *cleaningConfig

	config.Export = *loadExportConfig(defaults.Export)
	config.Batch = *loadBatchConfig(defaults.Batch)
	config.Profiling = ProfilingConfig{
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", defaults.Profiling.Enabled),
		Port:    getEnvOrDefault("PPROF_PORT", defaults.Profiling.Port),
	}
	config.Log = LogConfig{Level: strings.ToLower(getEnvOrDefault("LOG_LEVEL", defaults.Log.Level))}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate enforces the struct tags on config
func Validate(config *Config) error {
	if err := validation.Struct(config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

func loadServerConfig(defaults ServerConfig) *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", defaults.Port),
		GinMode:         getEnvOrDefault("GIN_MODE", defaults.GinMode),
		MaxUploadMB:     getEnvIntOrDefault("MAX_UPLOAD_MB", defaults.MaxUploadMB),
		PreviewRows:     getEnvIntOrDefault("PREVIEW_ROWS", defaults.PreviewRows),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", defaults.ShutdownTimeout),
	}
}

func loadCleaningConfig(defaults CleaningConfig) (*CleaningConfig, error) {
	sentinel := defaults.Sentinel
	if value := os.Getenv("SENTINEL_VALUE"); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, errors.ConfigInvalid("SENTINEL_VALUE must be a number")
		}
		sentinel = parsed
	}
	return &CleaningConfig{Sentinel: sentinel}, nil
}

func loadExportConfig(defaults ExportConfig) *ExportConfig {
	return &ExportConfig{
		SheetName: getEnvOrDefault("EXPORT_SHEET_NAME", defaults.SheetName),
		CSVBOM:    getEnvBoolOrDefault("CSV_BOM", defaults.CSVBOM),
	}
}

func loadBatchConfig(defaults BatchConfig) *BatchConfig {
	return &BatchConfig{
		Parallelism: getEnvIntOrDefault("BATCH_PARALLELISM", defaults.Parallelism),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
