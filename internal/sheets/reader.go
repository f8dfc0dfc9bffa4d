// Package sheets fetches form responses from Google Sheets. The form
// spreadsheet is maintained by the student support teams; when configured,
// it replaces the form sheet of the local workbook as the last merge input.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"itacli/internal/dataprocessing"
)

// Reader pulls cell ranges from one spreadsheet using a service account.
type Reader struct {
	service          *sheets.Service
	spreadsheetID    string
	retryMaxAttempts int
	retryDelay       time.Duration
	logger           *slog.Logger
}

// NewReader builds a Reader from a service-account credentials file.
func NewReader(ctx context.Context, spreadsheetID, credentialsFilePath string, logger *slog.Logger) (*Reader, error) {
	credentialsJSON, err := os.ReadFile(credentialsFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to configure JWT from credentials: %w", err)
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Sheets API client: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		service:          service,
		spreadsheetID:    spreadsheetID,
		retryMaxAttempts: 3,
		retryDelay:       2 * time.Second,
		logger:           logger,
	}, nil
}

// Fetch reads the given range and converts it into a table. The first row
// becomes the header row; blank header cells get positional names and blank
// data cells become missing values, matching the local workbook parser.
func (r *Reader) Fetch(ctx context.Context, readRange string) (*dataprocessing.Table, error) {
	var resp *sheets.ValueRange
	call := func() error {
		var err error
		resp, err = r.service.Spreadsheets.Values.Get(r.spreadsheetID, readRange).Context(ctx).Do()
		return err
	}

	if err := r.execute(ctx, call, fmt.Sprintf("fetch range %q", readRange)); err != nil {
		return nil, err
	}

	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("range %q of spreadsheet %s is empty", readRange, r.spreadsheetID)
	}

	headers := make([]string, len(resp.Values[0]))
	for i, cell := range resp.Values[0] {
		name := strings.TrimSpace(fmt.Sprintf("%v", cell))
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		headers[i] = name
	}

	t := dataprocessing.NewTable(headers)
	for _, row := range resp.Values[1:] {
		cells := make([]any, len(headers))
		for i := range headers {
			if i >= len(row) {
				continue
			}
			switch c := row[i].(type) {
			case nil:
			case string:
				if s := strings.TrimSpace(c); s != "" {
					cells[i] = s
				}
			default:
				// Numbers and booleans keep their API types.
				cells[i] = c
			}
		}
		t.AppendRow(cells)
	}

	r.logger.InfoContext(ctx, "fetched form responses",
		"spreadsheet_id", r.spreadsheetID,
		"range", readRange,
		"rows", t.NumRows(),
		"columns", t.NumCols(),
	)
	return t, nil
}

// execute runs one Sheets API call with exponential backoff on retryable
// errors, honoring context cancellation between attempts.
func (r *Reader) execute(ctx context.Context, call func() error, operation string) error {
	for attempt := 0; attempt <= r.retryMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("operation %s cancelled: %w", operation, ctx.Err())
		default:
		}

		err := call()
		if err == nil {
			return nil
		}

		if !isRetryableSheetsError(err) || attempt == r.retryMaxAttempts {
			return fmt.Errorf("sheets API operation %s failed after %d attempts: %w", operation, attempt+1, err)
		}

		delay := r.retryDelay * time.Duration(1<<attempt)
		r.logger.WarnContext(ctx, "sheets API call failed, retrying",
			"operation", operation,
			"attempt", attempt+1,
			"delay", delay.String(),
			"error", err.Error(),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("operation %s cancelled during retry wait: %w", operation, ctx.Err())
		}
	}
	return fmt.Errorf("unexpected retry state for operation %s", operation)
}

func isRetryableSheetsError(err error) bool {
	apiErr, ok := err.(*googleapi.Error)
	if !ok {
		return false
	}

	if apiErr.Code >= 500 && apiErr.Code < 600 {
		return true
	}
	if apiErr.Code == 429 {
		return true
	}
	if apiErr.Code == 403 && strings.Contains(strings.ToLower(apiErr.Message), "ratelimitexceeded") {
		return true
	}
	return false
}
