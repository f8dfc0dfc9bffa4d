package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"itacli/internal/config"
	"itacli/internal/exporter"
	"itacli/internal/infrastructure"
	"itacli/internal/ita"
	"itacli/internal/services"
	"itacli/internal/sheets"
	transport "itacli/internal/transport/http"
)

// Application holds the assembled server and its dependencies.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        chi.Router
	Server        *http.Server
	OTelProviders *infrastructure.OTelProviders
}

// NewApplication loads configuration and wires all components.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize tracing: %w", err)
	}

	var fetcher services.FormFetcher
	if cfg.Sheets.SpreadsheetID != "" {
		reader, err := sheets.NewReader(context.Background(), cfg.Sheets.SpreadsheetID, cfg.Paths.CredentialsFile, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize sheets reader: %w", err)
		}
		fetcher = reader
	}

	calculator := ita.NewCalculator(ita.DefaultWeights(), logger)
	itaService := services.NewITAService(cfg, calculator, fetcher, logger, providers.Tracer)
	healthService := services.NewHealthService(cfg, config.AppVersion, logger)
	writer := exporter.NewWriter(logger)

	router := transport.NewRouter(transport.RouterDeps{
		Config:        cfg,
		ITAHandler:    transport.NewITAHandler(itaService, writer, logger),
		HealthHandler: transport.NewHealthHandler(healthService, logger),
		Logger:        logger,
		Tracer:        providers.Tracer,
		Registry:      prometheus.NewRegistry(),
	})

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Router:        router,
		OTelProviders: providers,
	}
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

// Start launches the HTTP listener. A listen failure cancels the run context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting server",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("input_file", a.Config.Paths.InputFile),
	)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "server started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the server and flushes telemetry.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down tracing", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()
	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
