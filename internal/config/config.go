package config

import (
	"fmt"
	"os"
	"strconv"

	"surveyinsight/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Analysis AnalysisConfig
	Data     DataConfig
	Database DatabaseConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	UIPort      string
	GinMode     string
	MaxUploadMB int
}

// AnalysisConfig holds the significance-testing knobs
type AnalysisConfig struct {
	Alpha                float64
	MinGroupSize         int
	CheckboxPrefixTokens int
	RadioPrefixTokens    int
	Workers              int
}

// DatabaseConfig holds the optional dataset store connection. An empty URL
// keeps uploads in memory.
type DatabaseConfig struct {
	URL string
}

// DataConfig holds data processing settings
type DataConfig struct {
	ClassifierRules string
	DataFile        string
}

// DefaultAnalysisConfig returns the thresholds the segment explorer has always used
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Alpha:                0.05,
		MinGroupSize:         5,
		CheckboxPrefixTokens: 3,
		RadioPrefixTokens:    2,
		Workers:              4,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Data:     *loadDataConfig(),
		Database: DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	analysisConfig, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysisConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		UIPort:      getEnvOrDefault("UI_PORT", "8081"),
		GinMode:     getEnvOrDefault("GIN_MODE", "release"),
		MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 32),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		ClassifierRules: getEnvOrDefault("CLASSIFIER_RULES", ""),
		DataFile:        getEnvOrDefault("DATA_FILE", ""),
	}
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	defaults := DefaultAnalysisConfig()

	alpha, err := getEnvFloatStrict("ANALYSIS_ALPHA", defaults.Alpha)
	if err != nil {
		return nil, err
	}
	minGroup, err := getEnvIntStrict("ANALYSIS_MIN_GROUP_SIZE", defaults.MinGroupSize)
	if err != nil {
		return nil, err
	}
	checkboxTokens, err := getEnvIntStrict("CHECKBOX_PREFIX_TOKENS", defaults.CheckboxPrefixTokens)
	if err != nil {
		return nil, err
	}
	radioTokens, err := getEnvIntStrict("RADIO_PREFIX_TOKENS", defaults.RadioPrefixTokens)
	if err != nil {
		return nil, err
	}

	return &AnalysisConfig{
		Alpha:                alpha,
		MinGroupSize:         minGroup,
		CheckboxPrefixTokens: checkboxTokens,
		RadioPrefixTokens:    radioTokens,
		Workers:              getEnvIntOrDefault("ANALYSIS_WORKERS", defaults.Workers),
	}, nil
}

// Validate checks the analysis knobs are usable
func (c AnalysisConfig) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("analysis alpha must be in (0,1), got %g", c.Alpha))
	}
	if c.MinGroupSize < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("minimum group size must be positive, got %d", c.MinGroupSize))
	}
	if c.CheckboxPrefixTokens < 1 || c.RadioPrefixTokens < 1 {
		return errors.ConfigInvalid("group prefix token counts must be positive")
	}
	return nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Server.MaxUploadMB < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	return config.Analysis.Validate()
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

// getEnvIntStrict rejects malformed values instead of silently using the default
func getEnvIntStrict(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvFloatStrict(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return floatValue, nil
}
