package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "PLANILHA COMPLETA", cfg.Sources.MainSheet)
	assert.Equal(t, "Serviço Social", cfg.Sources.SocialSheet)
	assert.Equal(t, "Psicologia", cfg.Sources.PsychologySheet)
	assert.Equal(t, "Geral", cfg.Sources.GeneralSheet)
	assert.Equal(t, "Sheet1", cfg.Sources.FormSheet)
	assert.Equal(t, "json", cfg.Logging.Format)

	require.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout must be positive",
		},
		{
			name:    "no allowed origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name:    "empty main sheet name",
			mutate:  func(c *Config) { c.Sources.MainSheet = "" },
			wantErr: "sources",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesLogFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "pretty"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestFormWorkbook(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.Paths.InputFile, cfg.FormWorkbook())

	cfg.Paths.FormFile = "data/form.xlsx"
	assert.Equal(t, "data/form.xlsx", cfg.FormWorkbook())
}

func TestCriteriaWorkbook(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.Paths.InputFile, cfg.CriteriaWorkbook())

	cfg.Paths.CriteriaFile = "data/criteria.xlsx"
	assert.Equal(t, "data/criteria.xlsx", cfg.CriteriaWorkbook())
}

func TestOutputPath(t *testing.T) {
	cfg := Default()
	cfg.Paths.OutputDir = "reports"
	assert.Equal(t, "reports/ita_report.csv", cfg.OutputPath(ReportCSVName))

	cfg.Paths.OutputDir = ""
	assert.Equal(t, "ita_report.csv", cfg.OutputPath(ReportCSVName))
}

func TestMergeConfigsEnvPrecedence(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 9090
	fileCfg.Paths.InputFile = "file.xlsx"
	fileCfg.Sheets.SpreadsheetID = "from-file"

	envCfg := Config{}
	envCfg.Server.Port = 8081

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 8081, merged.Server.Port, "env value wins when set")
	assert.Equal(t, "file.xlsx", merged.Paths.InputFile, "file value fills the gap")
	assert.Equal(t, "from-file", merged.Sheets.SpreadsheetID)
}
