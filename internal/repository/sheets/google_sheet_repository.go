package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/herdfeed/internal/config"
	"github.com/mamadbah2/herdfeed/internal/domain/models"
)

const (
	feedingsWriteRange = "Feedings!A:F"
	dateFormat         = "2006-01-02 15:04"
)

// Ledger mirrors recorded feed events into an external spreadsheet.
type Ledger interface {
	AppendFeedEvent(ctx context.Context, event models.FeedEvent) error
}

// GoogleSheetRepository implements Ledger using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed ledger.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// FeedEventRow flattens an event into its ledger columns:
// date, group, feed type, total kg, underfed count, recorded by.
func FeedEventRow(event models.FeedEvent) []interface{} {
	return []interface{}{
		event.Timestamp.Format(dateFormat),
		string(event.Group),
		event.FeedType,
		event.TotalKg,
		event.CountStatus(models.StatusUnderfed),
		event.RecordedBy,
	}
}

// AppendFeedEvent appends one row per event to the Feedings sheet.
func (r *GoogleSheetRepository) AppendFeedEvent(ctx context.Context, event models.FeedEvent) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{FeedEventRow(event)}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, feedingsWriteRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append feed event %s into range %s: %w", event.ID, feedingsWriteRange, err)
	}

	r.logger.Debug("feed event appended to sheet", zap.String("event_id", event.ID), zap.String("range", feedingsWriteRange))
	return nil
}
