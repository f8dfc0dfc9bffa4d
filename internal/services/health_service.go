package services

import (
	"context"
	"log/slog"
	"os"
	"time"

	"itacli/internal/config"
)

// HealthStatus is the aggregate readiness report.
type HealthStatus struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthService reports process readiness: whether the input workbook is
// reachable and basic build information.
type HealthService struct {
	cfg     *config.Config
	version string
	started time.Time
	logger  *slog.Logger
}

// NewHealthService creates a health service.
func NewHealthService(cfg *config.Config, version string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		cfg:     cfg,
		version: version,
		started: time.Now(),
		logger:  logger.With(slog.String("component", "health_service")),
	}
}

// Check returns the current health status. The service is degraded rather
// than down when the input workbook is missing, since the server itself can
// still answer requests.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	checks := map[string]string{}
	status := "healthy"

	if _, err := os.Stat(s.cfg.Paths.InputFile); err != nil {
		checks["input_workbook"] = "missing: " + s.cfg.Paths.InputFile
		status = "degraded"
	} else {
		checks["input_workbook"] = "ok"
	}

	if s.cfg.Sheets.SpreadsheetID != "" {
		if _, err := os.Stat(s.cfg.Paths.CredentialsFile); err != nil {
			checks["sheets_credentials"] = "missing: " + s.cfg.Paths.CredentialsFile
			status = "degraded"
		} else {
			checks["sheets_credentials"] = "ok"
		}
	}

	return &HealthStatus{
		Status:    status,
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now(),
		Checks:    checks,
	}
}
