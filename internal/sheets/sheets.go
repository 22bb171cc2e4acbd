// Package sheets wraps the Google Sheets API for a single spreadsheet:
// whole-worksheet reads and rewrites plus small targeted range updates.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Client operates on one spreadsheet.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewClient builds a Client authenticated with the given service
// account JSON key.
func NewClient(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// ReadSheet returns every populated cell of the named worksheet as
// strings, row-major. A missing or empty worksheet yields no rows and
// no error.
func (c *Client) ReadSheet(ctx context.Context, title string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, title).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", title, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteSheet replaces the entire named worksheet with rows. The
// worksheet is cleared first so stale trailing rows never survive a
// shrinking table.
func (c *Client) WriteSheet(ctx context.Context, title string, rows [][]interface{}) error {
	if _, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, title, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %q: %w", title, err)
	}
	if _, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, fmt.Sprintf("%s!A1", title), &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %q: %w", title, err)
	}
	return nil
}

// UpdateRange writes rows at the given A1 range without touching the
// rest of the worksheet.
func (c *Client) UpdateRange(ctx context.Context, a1Range string, rows [][]interface{}) error {
	if _, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, a1Range, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("update range %q: %w", a1Range, err)
	}
	return nil
}
