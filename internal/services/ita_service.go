package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"itacli/internal/config"
	"itacli/internal/dataprocessing"
	"itacli/internal/ita"
)

// FormFetcher fetches the form responses from a remote spreadsheet.
// *sheets.Reader satisfies this; tests substitute a stub.
type FormFetcher interface {
	Fetch(ctx context.Context, readRange string) (*dataprocessing.Table, error)
}

// SourceLoadError reports which pipeline input failed to load.
type SourceLoadError struct {
	Source string
	Err    error
}

func (e *SourceLoadError) Error() string {
	return fmt.Sprintf("load source %s: %v", e.Source, e.Err)
}

func (e *SourceLoadError) Unwrap() error { return e.Err }

// ITAService loads the input tables and runs the scoring pipeline.
type ITAService struct {
	cfg        *config.Config
	calculator *ita.Calculator
	fetcher    FormFetcher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewITAService creates the service. fetcher may be nil; the form sheet is
// then read from the local workbook.
func NewITAService(cfg *config.Config, calculator *ita.Calculator, fetcher FormFetcher, logger *slog.Logger, tracer trace.Tracer) *ITAService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer("itacli/services")
	}
	return &ITAService{
		cfg:        cfg,
		calculator: calculator,
		fetcher:    fetcher,
		logger:     logger.With(slog.String("component", "ita_service")),
		tracer:     tracer,
	}
}

// LoadSources reads the five input tables concurrently. Any failing source
// aborts the load and is reported through SourceLoadError.
func (s *ITAService) LoadSources(ctx context.Context) (ita.Sources, error) {
	ctx, span := s.startSpan(ctx, "ita.load_sources")
	defer span.End()

	wb, err := dataprocessing.OpenWorkbook(s.cfg.Paths.InputFile)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ita.Sources{}, &SourceLoadError{Source: "main", Err: err}
	}
	defer wb.Close()

	// The criteria sheets may live in the main workbook or in their own file.
	criteria := wb
	if s.cfg.CriteriaWorkbook() != s.cfg.Paths.InputFile {
		criteria, err = dataprocessing.OpenWorkbook(s.cfg.CriteriaWorkbook())
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return ita.Sources{}, &SourceLoadError{Source: "criteria", Err: err}
		}
		defer criteria.Close()
	}

	var src ita.Sources
	g, gctx := errgroup.WithContext(ctx)

	loadSheet := func(from *dataprocessing.Workbook, name, sheet string, dst **dataprocessing.Table) func() error {
		return func() error {
			t, err := from.Sheet(sheet)
			if err != nil {
				return &SourceLoadError{Source: name, Err: err}
			}
			*dst = t
			return gctx.Err()
		}
	}

	g.Go(loadSheet(wb, "main", s.cfg.Sources.MainSheet, &src.Main))
	g.Go(loadSheet(criteria, "social", s.cfg.Sources.SocialSheet, &src.Social))
	g.Go(loadSheet(criteria, "psychology", s.cfg.Sources.PsychologySheet, &src.Psychology))
	g.Go(loadSheet(criteria, "general", s.cfg.Sources.GeneralSheet, &src.General))
	g.Go(func() error {
		t, err := s.loadForm(gctx)
		if err != nil {
			return &SourceLoadError{Source: "form", Err: err}
		}
		src.Form = t
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ita.Sources{}, err
	}

	span.SetAttributes(
		attribute.Int("main_rows", src.Main.NumRows()),
		attribute.Int("form_rows", src.Form.NumRows()),
	)
	return src, nil
}

// loadForm reads the form table from the configured spreadsheet when
// available, otherwise from the form workbook on disk.
func (s *ITAService) loadForm(ctx context.Context) (*dataprocessing.Table, error) {
	if s.fetcher != nil && s.cfg.Sheets.SpreadsheetID != "" {
		return s.fetcher.Fetch(ctx, s.cfg.Sheets.ReadRange)
	}

	wb, err := dataprocessing.OpenWorkbook(s.cfg.FormWorkbook())
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return wb.Sheet(s.cfg.Sources.FormSheet)
}

// Calculate loads the sources and runs the full pipeline.
func (s *ITAService) Calculate(ctx context.Context) (*dataprocessing.Table, error) {
	ctx, span := s.startSpan(ctx, "ita.calculate")
	defer span.End()

	start := time.Now()

	src, err := s.LoadSources(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.CalculateFromSources(ctx, src)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.logger.InfoContext(ctx, "pipeline finished",
		"duration", time.Since(start).String(),
		"rows", result.NumRows(),
	)
	return result, nil
}

// CalculateFromSources runs the pipeline over already-loaded tables.
func (s *ITAService) CalculateFromSources(ctx context.Context, src ita.Sources) (*dataprocessing.Table, error) {
	ctx, span := s.startSpan(ctx, "ita.score")
	defer span.End()

	result, err := s.calculator.Calculate(ctx, src)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("calculate scores: %w", err)
	}

	span.SetAttributes(attribute.Int("rows", result.NumRows()))
	return result, nil
}

func (s *ITAService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name)
}
