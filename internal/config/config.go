package config

import (
	"os"
	"strconv"

	apperrors "carevisits/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Paths    PathConfig
}

// DatabaseConfig holds database connection settings. The database is an
// optional observation source; file-based runs leave URL empty.
type DatabaseConfig struct {
	URL               string
	ObservationsTable string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// PathConfig holds file system paths
type PathConfig struct {
	SurveyFile   string // xlsx export of the tidy survey table
	WorkbookOut  string // rendered chart workbook
	ReportOut    string // HTML analysis report
	ReportFormat string // "html" or "markdown"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:               getEnvOrDefault("DATABASE_URL", ""),
			ObservationsTable: getEnvOrDefault("OBSERVATIONS_TABLE", "observations"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Paths: PathConfig{
			SurveyFile:   getEnvOrDefault("SURVEY_FILE", ""),
			WorkbookOut:  getEnvOrDefault("WORKBOOK_OUT", "analysis.xlsx"),
			ReportOut:    getEnvOrDefault("REPORT_OUT", "analysis.html"),
			ReportFormat: getEnvOrDefault("REPORT_FORMAT", "html"),
		},
	}

	if f := cfg.Paths.ReportFormat; f != "html" && f != "markdown" {
		return nil, apperrors.ConfigInvalid("REPORT_FORMAT must be html or markdown, got " + f)
	}
	return cfg, nil
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
