// Package google mirrors report plans into a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"societyfund/internal/export"
	"societyfund/internal/report"
	ports "societyfund/internal/sheets"
)

// Column widths in report plans are in spreadsheet character units; Sheets
// wants pixels.
const pixelsPerWidthUnit = 7

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	formatter     report.Formatter
}

var _ ports.Publisher = (*Client)(nil)

// Credentials selects the service account used to talk to Sheets. JSON wins
// over File when both are set.
type Credentials struct {
	File string
	JSON string
}

// NewFromConfig creates a Sheets client authenticated with a service account.
func NewFromConfig(ctx context.Context, spreadsheetID string, creds Credentials, currencySymbol string) (*Client, error) {
	credentialsJSON, err := creds.load(ctx)
	if err != nil {
		return nil, err
	}
	return New(ctx, spreadsheetID, currencySymbol,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()),
	)
}

// New creates a client from raw API options.
func New(ctx context.Context, spreadsheetID, currencySymbol string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, formatter: report.NewFormatter(currencySymbol)}, nil
}

func (c Credentials) load(ctx context.Context) ([]byte, error) {
	inline := strings.TrimSpace(c.JSON)
	file := strings.TrimSpace(c.File)
	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials", "json_length", len(inline))
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read service account credentials", "path", file, "size", len(data))
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// newHTTPClientWithPooling keeps connections to the Sheets API warm between
// publish runs.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

type sheetData struct {
	name   string
	rows   [][]any
	widths []float64
}

// batch collects the sheets of one publish run before anything is sent.
type batch struct {
	sheets []*sheetData
	index  map[string]*sheetData
}

var _ export.SpreadsheetBuilder = (*batch)(nil)

func newBatch() *batch {
	return &batch{index: make(map[string]*sheetData)}
}

func (b *batch) AddSheet(name string, rows [][]any) error {
	if _, ok := b.index[name]; ok {
		return fmt.Errorf("duplicate sheet %q", name)
	}
	s := &sheetData{name: name, rows: rows}
	b.sheets = append(b.sheets, s)
	b.index[name] = s
	return nil
}

func (b *batch) SetColumnWidths(sheet string, widths []float64) error {
	s, ok := b.index[sheet]
	if !ok {
		return fmt.Errorf("unknown sheet %q", sheet)
	}
	s.widths = widths
	return nil
}

// Publish writes every section of every plan into a sheet of the same name.
// Missing sheets are added; existing ones are cleared first. A failure part
// way through leaves the sheets already written in place.
func (c *Client) Publish(ctx context.Context, plans ...report.Plan) error {
	b := newBatch()
	for _, plan := range plans {
		if err := export.FillSpreadsheet(plan, b, c.formatter); err != nil {
			return fmt.Errorf("assemble %s: %w", plan.Kind, err)
		}
	}
	if len(b.sheets) == 0 {
		return nil
	}

	ids, err := c.sheetIDs(ctx)
	if err != nil {
		return err
	}
	if err := c.addMissing(ctx, b, ids); err != nil {
		return err
	}

	for _, s := range b.sheets {
		rng := quoteSheet(s.name)
		if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return fmt.Errorf("clear %s: %w", s.name, err)
		}
		vr := &gsheet.ValueRange{Range: rng, Values: toValues(s.rows)}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write %s: %w", s.name, err)
		}
	}

	if reqs := widthRequests(b, ids); len(reqs) > 0 {
		req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("set column widths: %w", err)
		}
	}

	slog.InfoContext(ctx, "Spreadsheet updated", "spreadsheet_id", c.spreadsheetID, "sheets", len(b.sheets))
	return nil
}

func (c *Client) sheetIDs(ctx context.Context) (map[string]int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	ids := make(map[string]int64, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids, nil
}

func (c *Client) addMissing(ctx context.Context, b *batch, ids map[string]int64) error {
	var reqs []*gsheet.Request
	for _, s := range b.sheets {
		if _, ok := ids[s.name]; !ok {
			reqs = append(reqs, &gsheet.Request{AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: s.name},
			}})
		}
	}
	if len(reqs) == 0 {
		return nil
	}
	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheets: %w", err)
	}
	for _, r := range resp.Replies {
		if r.AddSheet != nil && r.AddSheet.Properties != nil {
			ids[r.AddSheet.Properties.Title] = r.AddSheet.Properties.SheetId
		}
	}
	return nil
}

func widthRequests(b *batch, ids map[string]int64) []*gsheet.Request {
	var reqs []*gsheet.Request
	for _, s := range b.sheets {
		id, ok := ids[s.name]
		if !ok {
			continue
		}
		for i, w := range s.widths {
			reqs = append(reqs, &gsheet.Request{UpdateDimensionProperties: &gsheet.UpdateDimensionPropertiesRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    id,
					Dimension:  "COLUMNS",
					StartIndex: int64(i),
					EndIndex:   int64(i + 1),
				},
				Properties: &gsheet.DimensionProperties{PixelSize: int64(w * pixelsPerWidthUnit)},
				Fields:     "pixelSize",
			}})
		}
	}
	return reqs
}

// quoteSheet turns a sheet title into an A1 range covering the whole sheet.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// toValues pads empty rows so the API keeps them as blank lines.
func toValues(rows [][]any) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		if len(r) == 0 {
			out[i] = []interface{}{""}
			continue
		}
		out[i] = r
	}
	return out
}
