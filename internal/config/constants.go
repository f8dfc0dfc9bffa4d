package config

import "time"

// Application constants for the ITA reporting system
const (
	// Application Info
	AppName    = "ITA Report"
	AppVersion = "1.0.0"

	// Report files written into the output directory
	ReportCSVName  = "ita_report.csv"
	ReportXLSXName = "ita_report.xlsx"
	ReportSheet    = "ITA"

	// Network Timeouts
	DefaultHTTPTimeout = 30 * time.Second
	SheetsFetchTimeout = 45 * time.Second

	// Operation Timeouts
	DefaultOperationTimeout = 10 * time.Minute
	CalculationTimeout      = 5 * time.Minute
	ReportGenerationTimeout = 2 * time.Minute

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API Endpoints
	APIBasePath       = "/api"
	CalculateEndpoint = "/api/ita/calculate"
	ReportEndpoint    = "/api/ita/report"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
)
