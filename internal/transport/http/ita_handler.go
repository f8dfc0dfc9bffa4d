package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"itacli/internal/config"
	"itacli/internal/dataprocessing"
	apierrors "itacli/internal/errors"
	"itacli/internal/exporter"
	"itacli/internal/services"
)

// CalculatorService runs the scoring pipeline. *services.ITAService
// satisfies this; tests substitute a stub.
type CalculatorService interface {
	Calculate(ctx context.Context) (*dataprocessing.Table, error)
}

// ITAHandler handles scoring and report download requests.
type ITAHandler struct {
	service CalculatorService
	writer  *exporter.Writer
	logger  *slog.Logger
}

// NewITAHandler creates a new handler.
func NewITAHandler(service CalculatorService, writer *exporter.Writer, logger *slog.Logger) *ITAHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ITAHandler{
		service: service,
		writer:  writer,
		logger:  logger.With(slog.String("component", "ita_handler")),
	}
}

// Routes returns the ITA routes.
func (h *ITAHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/calculate", h.Calculate)
	r.Get("/report", h.DownloadReport)

	return r
}

// Calculate handles POST /api/ita/calculate. It runs the whole pipeline and
// returns the scored records as JSON, preserving the report column order.
func (h *ITAHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.Calculate(ctx)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"rows":    result.NumRows(),
		"columns": result.Columns(),
		"data":    tableRecords(result),
	})
}

// DownloadReport handles GET /api/ita/report?format=csv|xlsx and streams the
// freshly computed report as a file download.
func (h *ITAHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		apierrors.WriteError(w, apierrors.ErrValidation("format", "format must be csv or xlsx"))
		return
	}

	result, err := h.service.Calculate(ctx)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	var buf bytes.Buffer
	var contentType, filename string
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		filename = config.ReportCSVName
		err = h.writer.CSV(&buf, result)
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = config.ReportXLSXName
		err = h.writer.XLSX(&buf, result, config.ReportSheet)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "report encoding failed",
			slog.String("format", format),
			slog.String("error", err.Error()),
		)
		apierrors.WriteError(w, apierrors.NewInternalError("failed to encode report"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// renderError maps service failures onto the APIError envelope.
func (h *ITAHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "pipeline request failed",
		slog.String("error", err.Error()),
		slog.String("path", r.URL.Path),
	)

	var loadErr *services.SourceLoadError
	if errors.As(err, &loadErr) {
		apierrors.WriteError(w, apierrors.SourceLoadError(loadErr.Source, loadErr.Err))
		return
	}

	apierrors.WriteError(w, apierrors.CalculationError(err))
}

// tableRecords converts the table to JSON-friendly row objects. Missing
// values are emitted as nulls to keep the column set uniform.
func tableRecords(t *dataprocessing.Table) []map[string]interface{} {
	cols := t.Columns()
	records := make([]map[string]interface{}, 0, t.NumRows())
	for _, row := range t.Rows() {
		rec := make(map[string]interface{}, len(cols))
		for i, name := range cols {
			rec[name] = jsonCell(row[i])
		}
		records = append(records, rec)
	}
	return records
}

func jsonCell(v any) interface{} {
	if f, ok := v.(float64); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	}
	return v
}
