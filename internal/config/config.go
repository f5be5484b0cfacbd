package config

import (
	"os"
	"strconv"
	"strings"

	"gobanner/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline PipelineSettings
	Server   ServerConfig
	Database DatabaseConfig
	Paths    PathConfig
}

// PipelineSettings holds the global tabulation rules
type PipelineSettings struct {
	SkipEmptyBanners            bool
	IncludeTotal                bool
	IncludeCounts               bool
	BoxSize                     int
	Direction                   string
	Alpha                       float64
	MarginalAlpha               float64
	Yates                       bool
	Workers                     int
	RequireClassificationReview bool
	RequireRecodeConfirmation   bool
	RequireAuditApproval        bool
	MaxSuggestedBanners         int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings. An empty URL selects the in-memory run store.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// PathConfig holds file system paths
type PathConfig struct {
	OutputDir string
	PlanFile  string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Pipeline: loadPipelineSettings(),
		Server:   ServerConfig{Port: getEnvOrDefault("PORT", "8080")},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		Paths: PathConfig{
			OutputDir: getEnvOrDefault("OUTPUT_DIR", "outputs"),
			PlanFile:  os.Getenv("PLAN_FILE"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// DefaultPipelineSettings returns the settings used when no environment is set
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		SkipEmptyBanners:    true,
		IncludeTotal:        true,
		IncludeCounts:       false,
		BoxSize:             2,
		Direction:           "top",
		Alpha:               0.05,
		MarginalAlpha:       0.10,
		Workers:             4,
		MaxSuggestedBanners: 5,
	}
}

func loadPipelineSettings() PipelineSettings {
	d := DefaultPipelineSettings()
	return PipelineSettings{
		SkipEmptyBanners:            getEnvBoolOrDefault("BANNER_SKIP_EMPTY", d.SkipEmptyBanners),
		IncludeTotal:                getEnvBoolOrDefault("BANNER_INCLUDE_TOTAL", d.IncludeTotal),
		IncludeCounts:               getEnvBoolOrDefault("BANNER_INCLUDE_COUNTS", d.IncludeCounts),
		BoxSize:                     getEnvIntOrDefault("RECODE_BOX_SIZE", d.BoxSize),
		Direction:                   strings.ToLower(getEnvOrDefault("RECODE_DIRECTION", d.Direction)),
		Alpha:                       getEnvFloatOrDefault("SIG_ALPHA", d.Alpha),
		MarginalAlpha:               getEnvFloatOrDefault("SIG_MARGINAL_ALPHA", d.MarginalAlpha),
		Yates:                       getEnvBoolOrDefault("SIG_YATES", d.Yates),
		Workers:                     getEnvIntOrDefault("WORKERS", d.Workers),
		RequireClassificationReview: getEnvBoolOrDefault("REQUIRE_CLASSIFICATION_REVIEW", d.RequireClassificationReview),
		RequireRecodeConfirmation:   getEnvBoolOrDefault("REQUIRE_RECODE_CONFIRMATION", d.RequireRecodeConfirmation),
		RequireAuditApproval:        getEnvBoolOrDefault("REQUIRE_AUDIT_APPROVAL", d.RequireAuditApproval),
		MaxSuggestedBanners:         getEnvIntOrDefault("MAX_SUGGESTED_BANNERS", d.MaxSuggestedBanners),
	}
}

// Validate checks pipeline settings
func (s PipelineSettings) Validate() error {
	if s.BoxSize < 1 {
		return errors.ConfigInvalid("RECODE_BOX_SIZE must be at least 1")
	}
	if s.Direction != "top" && s.Direction != "bottom" {
		return errors.ConfigInvalid("RECODE_DIRECTION must be top or bottom")
	}
	if s.Alpha <= 0 || s.Alpha >= 1 {
		return errors.ConfigInvalid("SIG_ALPHA must be between 0 and 1")
	}
	if s.MarginalAlpha < s.Alpha || s.MarginalAlpha >= 1 {
		return errors.ConfigInvalid("SIG_MARGINAL_ALPHA must be at least SIG_ALPHA and below 1")
	}
	if s.Workers < 0 {
		return errors.ConfigInvalid("WORKERS cannot be negative")
	}
	return nil
}

func validateConfig(config *Config) error {
	if err := config.Pipeline.Validate(); err != nil {
		return err
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	return nil
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
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
