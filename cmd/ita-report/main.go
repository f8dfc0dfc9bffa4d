// Command ita-report runs the scoring pipeline once and writes the CSV and
// XLSX reports to the output directory.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"itacli/internal/config"
	"itacli/internal/exporter"
	"itacli/internal/infrastructure"
	"itacli/internal/ita"
	"itacli/internal/services"
	"itacli/internal/sheets"
)

func main() {
	inputFile := flag.String("in", "", "input workbook (overrides ITA_PATHS_INPUT_FILE)")
	criteriaFile := flag.String("criteria", "", "criteria workbook (overrides ITA_PATHS_CRITERIA_FILE)")
	formFile := flag.String("form", "", "form workbook (overrides ITA_PATHS_FORM_FILE)")
	outputDir := flag.String("out", "", "output directory for reports (overrides ITA_PATHS_OUTPUT_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *inputFile != "" {
		cfg.Paths.InputFile = *inputFile
	}
	if *criteriaFile != "" {
		cfg.Paths.CriteriaFile = *criteriaFile
	}
	if *formFile != "" {
		cfg.Paths.FormFile = *formFile
	}
	if *outputDir != "" {
		cfg.Paths.OutputDir = *outputDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx := context.Background()

	var fetcher services.FormFetcher
	if cfg.Sheets.SpreadsheetID != "" {
		reader, err := sheets.NewReader(ctx, cfg.Sheets.SpreadsheetID, cfg.Paths.CredentialsFile, logger)
		if err != nil {
			logger.Error("Failed to initialize sheets reader", "error", err)
			os.Exit(1)
		}
		fetcher = reader
	}

	calculator := ita.NewCalculator(ita.DefaultWeights(), logger)
	service := services.NewITAService(cfg, calculator, fetcher, logger, nil)

	logger.Info("Running ITA pipeline", "input", cfg.Paths.InputFile)
	runCtx, cancel := context.WithTimeout(ctx, cfg.Server.OperationTimeout)
	defer cancel()

	result, err := service.Calculate(runCtx)
	if err != nil {
		logger.Error("Pipeline failed", "error", err)
		os.Exit(1)
	}

	writer := exporter.NewWriter(logger)
	csvPath := cfg.OutputPath(config.ReportCSVName)
	if err := writer.WriteCSVFile(csvPath, result); err != nil {
		logger.Error("Failed to write CSV report", "path", csvPath, "error", err)
		os.Exit(1)
	}

	xlsxPath := cfg.OutputPath(config.ReportXLSXName)
	if err := writer.WriteXLSXFile(xlsxPath, result, config.ReportSheet); err != nil {
		logger.Error("Failed to write XLSX report", "path", xlsxPath, "error", err)
		os.Exit(1)
	}

	logger.Info("Reports generated",
		"students", result.NumRows(),
		"csv", csvPath,
		"xlsx", xlsxPath,
	)
}
