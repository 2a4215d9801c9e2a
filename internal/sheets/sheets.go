// Package sheets reads the Google Sheets that clubs link to their events
// to collect registrations.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

var (
	ErrInvalidLink = errors.New("invalid Google Sheet link")
	ErrNoAPIKey    = errors.New("no Google API key configured (set sheets_api_key)")
)

// FallbackSheet is read when the spreadsheet's sheet names cannot be
// fetched.
const FallbackSheet = "Sheet1"

var idPattern = regexp.MustCompile(`spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetID extracts the spreadsheet ID from a sharing link.
func SpreadsheetID(link string) (string, bool) {
	m := idPattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Client reads spreadsheets with an API key.
type Client struct {
	svc *gsheets.Service
	log *slog.Logger
}

// New creates a Client. Extra options are passed to the Sheets service.
func New(ctx context.Context, apiKey string, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &Client{svc: svc, log: logger.With("component", "sheets")}, nil
}

// Rows returns every row of the first sheet of the spreadsheet behind
// link. The first row is normally the header.
func (c *Client) Rows(ctx context.Context, link string) ([][]string, error) {
	id, ok := SpreadsheetID(link)
	if !ok {
		return nil, ErrInvalidLink
	}
	title := c.firstSheet(ctx, id)

	vr, err := c.svc.Spreadsheets.Values.Get(id, title).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", title, err)
	}
	rows := make([][]string, 0, len(vr.Values))
	for _, r := range vr.Values {
		row := make([]string, len(r))
		for i, v := range r {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) firstSheet(ctx context.Context, id string) string {
	ss, err := c.svc.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		c.log.Debug("reading sheet names", "spreadsheet", id, "error", err)
		return FallbackSheet
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil || ss.Sheets[0].Properties.Title == "" {
		return FallbackSheet
	}
	return ss.Sheets[0].Properties.Title
}
