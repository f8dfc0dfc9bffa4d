package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Sources  SourcesConfig  `yaml:"sources" envconfig:"SOURCES"`
	Sheets   SheetsConfig   `yaml:"sheets" envconfig:"SHEETS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port             int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout      time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout      time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes   int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	OperationTimeout time.Duration `yaml:"operation_timeout" envconfig:"OPERATION_TIMEOUT" default:"10m"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	InputFile       string `yaml:"input_file" envconfig:"INPUT_FILE" default:"data/ita.xlsx"`
	CriteriaFile    string `yaml:"criteria_file" envconfig:"CRITERIA_FILE"`
	FormFile        string `yaml:"form_file" envconfig:"FORM_FILE"`
	OutputDir       string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"reports"`
	LogsDir         string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE" default:"credentials.json"`
}

// SourcesConfig names the worksheets each pipeline input is read from. The
// form sheet lives in its own workbook when paths.form_file is set, otherwise
// in the main workbook.
type SourcesConfig struct {
	MainSheet       string `yaml:"main_sheet" envconfig:"MAIN_SHEET" default:"PLANILHA COMPLETA" validate:"required"`
	SocialSheet     string `yaml:"social_sheet" envconfig:"SOCIAL_SHEET" default:"Serviço Social" validate:"required"`
	PsychologySheet string `yaml:"psychology_sheet" envconfig:"PSYCHOLOGY_SHEET" default:"Psicologia" validate:"required"`
	GeneralSheet    string `yaml:"general_sheet" envconfig:"GENERAL_SHEET" default:"Geral" validate:"required"`
	FormSheet       string `yaml:"form_sheet" envconfig:"FORM_SHEET" default:"Sheet1" validate:"required"`
}

// SheetsConfig configures the optional Google Sheets fetch of the form
// responses. When SpreadsheetID is empty the form is read from the local
// workbook instead.
type SheetsConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	ReadRange     string `yaml:"read_range" envconfig:"READ_RANGE" default:"Sheet1"`
}

// Load loads configuration from .env, environment variables and an optional
// YAML config file. Environment variables take precedence over the file.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ITA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.ensureDirectories(); err != nil {
		return nil, fmt.Errorf("path validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Server.WriteTimeout == 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if envConfig.Paths.InputFile == "" {
		envConfig.Paths.InputFile = fileConfig.Paths.InputFile
	}
	if envConfig.Paths.CriteriaFile == "" {
		envConfig.Paths.CriteriaFile = fileConfig.Paths.CriteriaFile
	}
	if envConfig.Paths.FormFile == "" {
		envConfig.Paths.FormFile = fileConfig.Paths.FormFile
	}
	if envConfig.Paths.OutputDir == "" {
		envConfig.Paths.OutputDir = fileConfig.Paths.OutputDir
	}
	if envConfig.Sheets.SpreadsheetID == "" {
		envConfig.Sheets.SpreadsheetID = fileConfig.Sheets.SpreadsheetID
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	validate := validator.New()
	if err := validate.Struct(c.Sources); err != nil {
		return fmt.Errorf("sources: %w", err)
	}

	return nil
}

// ensureDirectories creates the writable directories the pipeline needs.
func (c *Config) ensureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OutputPath resolves a report file name inside the output directory.
func (c *Config) OutputPath(name string) string {
	if c.Paths.OutputDir == "" {
		return name
	}
	return filepath.Join(c.Paths.OutputDir, name)
}

// CriteriaWorkbook returns the workbook path holding the three service
// sheets. Deployments keep them either in the main workbook or in a separate
// file maintained by the support teams.
func (c *Config) CriteriaWorkbook() string {
	if c.Paths.CriteriaFile != "" {
		return c.Paths.CriteriaFile
	}
	return c.Paths.InputFile
}

// FormWorkbook returns the workbook path holding the form sheet.
func (c *Config) FormWorkbook() string {
	if c.Paths.FormFile != "" {
		return c.Paths.FormFile
	}
	return c.Paths.InputFile
}

// findConfigFile returns the path to the config file
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             8080,
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     15 * time.Second,
			IdleTimeout:      60 * time.Second,
			MaxHeaderBytes:   1 << 20, // 1MB
			ShutdownTimeout:  30 * time.Second,
			OperationTimeout: 10 * time.Minute,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			InputFile:       "data/ita.xlsx",
			OutputDir:       "reports",
			LogsDir:         "logs",
			CredentialsFile: "credentials.json",
		},
		Sources: SourcesConfig{
			MainSheet:       "PLANILHA COMPLETA",
			SocialSheet:     "Serviço Social",
			PsychologySheet: "Psicologia",
			GeneralSheet:    "Geral",
			FormSheet:       "Sheet1",
		},
		Sheets: SheetsConfig{
			ReadRange: "Sheet1",
		},
	}
}
