// Package config provides centralized configuration management for the ITA
// reporting system. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration values
// throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A .env file in the working directory
//	3. configs/config.yaml (or config.yaml)
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ITA_* for namespacing:
//
//	ITA_SERVER_PORT=8080
//	ITA_PATHS_INPUT_FILE=data/ita.xlsx
//	ITA_SOURCES_MAIN_SHEET="PLANILHA COMPLETA"
//	ITA_SHEETS_SPREADSHEET_ID=1AbC...
//	ITA_LOGGING_LEVEL=info
//
// # Validation
//
// All configuration is validated at load time: required sheet names must be
// present, the server port must be in range, and the output and log
// directories are created if missing.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
