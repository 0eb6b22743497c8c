package gsheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/garimakakkar/food-delivery-spend-analyser/invoice"
)

// Scope grants read/write access to the target spreadsheet.
const Scope = sheets.SpreadsheetsScope

// Header is the fixed column order of the invoice sheet.
var Header = []interface{}{"Date", "Restaurant", "Amount", "Items", "Filename"}

// Client appends invoice records to one spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
}

func NewClient(httpClient *http.Client, spreadsheetID string, opts ...option.ClientOption) (*Client, error) {
	if httpClient != nil {
		opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	}
	svc, err := sheets.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve sheets client: %v", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// EnsureSheet creates the tab and its header row when they do not exist
// yet. Calling it against a tab that already has a header changes nothing,
// so reruns never produce a second header row.
func (c *Client) EnsureSheet(tab string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Do()
	if err != nil {
		return fmt.Errorf("unable to read spreadsheet: %v", err)
	}
	found := false
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			found = true
			break
		}
	}
	if !found {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: tab},
				},
			}},
		}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Do(); err != nil {
			return fmt.Errorf("unable to create sheet %v: %v", tab, err)
		}
	}
	headerRange := fmt.Sprintf("%v!A1:E1", tab)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, headerRange).Do()
	if err != nil {
		return fmt.Errorf("unable to read header row: %v", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{Header}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, headerRange, vr).
		ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("unable to write header row: %v", err)
	}
	return nil
}

// Append adds one row with the record's fields at the end of the tab.
func (c *Client) Append(tab string, rec invoice.Record) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{Row(rec)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, tab+"!A1", vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Do()
	if err != nil {
		return fmt.Errorf("unable to append row: %v", err)
	}
	return nil
}

// Row renders a record in the Header column order. Missing fields become
// empty cells; the amount keeps its exact decimal representation.
func Row(rec invoice.Record) []interface{} {
	amount := ""
	if rec.Amount.Valid {
		amount = rec.Amount.Decimal.String()
	}
	return []interface{}{
		rec.Date,
		rec.Restaurant,
		amount,
		strings.Join(rec.Items, ", "),
		rec.Filename,
	}
}
