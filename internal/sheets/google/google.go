package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"climbreg/internal/core"
	ports "climbreg/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// The authenticated Sheets service is process-wide: created lazily on first
// use, reused by every Client, never torn down until process exit.
var (
	svcOnce sync.Once
	svc     *gsheet.Service
	svcErr  error
)

// Client reads and appends rows of the registration worksheet. The worksheet
// layout is fixed: header row, then one registration per row in columns A:E
// (timestamp, name, email, category, amount).
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	worksheet     string
}

var (
	_ ports.RegistrationWriter = (*Client)(nil)
	_ ports.RegistrationReader = (*Client)(nil)
)

// New creates a Sheets client for the given spreadsheet and worksheet,
// authenticating the shared service on first call.
func New(ctx context.Context, spreadsheetID, worksheet string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(worksheet) == "" {
		worksheet = "Sheet1"
	}

	service, err := sharedService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           service,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
	}, nil
}

// sharedService authenticates once using service-account credentials from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func sharedService(ctx context.Context) (*gsheet.Service, error) {
	svcOnce.Do(func() {
		svc, svcErr = newSheetsService(ctx)
	})
	return svc, svcErr
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	inlineJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	credFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inlineJSON == "" && credFile == "" {
		credFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inlineJSON != "":
		credentialsJSON = []byte(inlineJSON)
	case credFile != "":
		b, err := os.ReadFile(credFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Authenticated with Google Sheets API")
	return service, nil
}

// Append implements ports.RegistrationWriter. The row matches the persisted
// contract exactly: RFC3339 timestamp, name, email, category, numeric amount.
func (c *Client) Append(ctx context.Context, r core.Registration) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row := []interface{}{
		r.Timestamp.Format(time.RFC3339),
		r.Name,
		r.Email,
		r.Category.String(),
		r.Amount.Dollars(),
	}
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.readRange(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append row to %s: %w", c.worksheet, err)
	}

	ref := c.worksheet
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// All implements ports.RegistrationReader: it fetches the whole worksheet
// and parses rows after the header.
func (c *Client) All(ctx context.Context) ([]core.Registration, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange()).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.readRange(), err)
	}

	return parseRows(resp.Values), nil
}

func (c *Client) readRange() string {
	return fmt.Sprintf("%s!A:E", c.worksheet)
}
