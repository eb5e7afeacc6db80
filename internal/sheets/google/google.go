// Package google uploads group workbooks to a Google Spreadsheet, one
// tab per section. Each upload replaces the tab's previous contents so
// the spreadsheet always mirrors the latest report.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "tripsplit/internal/sheets"
)

// Tab names must stay under the Sheets limit of 100 characters.
const maxTabName = 100

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ ports.WorkbookWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "component", "sheets")
	return service, nil
}

// WriteWorkbook implements ports.WorkbookWriter. Missing tabs are
// created, existing ones cleared before the new values go in.
func (c *Client) WriteWorkbook(ctx context.Context, wb ports.Workbook) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	existing, err := c.tabNames(ctx)
	if err != nil {
		return err
	}

	for _, section := range wb.Sections {
		tab := tabName(wb.Group, section.Title)
		if _, ok := existing[tab]; !ok {
			if err := c.addTab(ctx, tab); err != nil {
				return err
			}
			existing[tab] = struct{}{}
		}

		clearRange := fmt.Sprintf("'%s'!A:Z", tab)
		if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
			Context(ctx).Do(); err != nil {
			return fmt.Errorf("clear %s: %w", tab, err)
		}

		if len(section.Rows) == 0 {
			continue
		}
		vr := &gsheet.ValueRange{Values: section.Rows}
		writeRange := fmt.Sprintf("'%s'!A1", tab)
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
			return fmt.Errorf("update %s: %w", tab, err)
		}
	}

	slog.InfoContext(ctx, "Workbook uploaded",
		"group", wb.Group, "sections", len(wb.Sections), "component", "sheets")
	return nil
}

func (c *Client) tabNames(ctx context.Context) (map[string]struct{}, error) {
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	names := make(map[string]struct{}, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			names[s.Properties.Title] = struct{}{}
		}
	}
	return names, nil
}

func (c *Client) addTab(ctx context.Context, title string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	return nil
}

// tabName combines group and section into a valid sheet tab title.
func tabName(group, section string) string {
	name := fmt.Sprintf("%s - %s", group, section)
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	if len(name) > maxTabName {
		name = name[:maxTabName]
	}
	return name
}
