// Package sheets wraps the Google Sheets v4 REST API for reading and
// appending worksheet values.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Scope grants read/write access to spreadsheets.
const Scope = "https://www.googleapis.com/auth/spreadsheets"

// New tabs are created with this grid size.
const (
	defaultRowCount    = 1000
	defaultColumnCount = 20
)

// ErrNotFound is returned when the spreadsheet does not exist or is not shared
// with the caller.
var ErrNotFound = errors.New("sheets: not found")

// APIError is a non-2xx response from the Sheets API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets: unexpected status %d: %s", e.StatusCode, e.Message)
}

// Client performs Google Sheets API operations.
type Client interface {
	GetSpreadsheet(ctx context.Context, spreadsheetID string) (*Spreadsheet, error)
	GetValues(ctx context.Context, spreadsheetID, a1Range string) ([][]string, error)
	AppendValues(ctx context.Context, spreadsheetID, a1Range string, rows [][]any) error
	ClearValues(ctx context.Context, spreadsheetID, a1Range string) error
	AddSheet(ctx context.Context, spreadsheetID, title string) error
}

// Spreadsheet is the subset of spreadsheet metadata used here.
type Spreadsheet struct {
	SpreadsheetID string  `json:"spreadsheetId"`
	Sheets        []Sheet `json:"sheets"`
}

// Sheet is one tab of a spreadsheet.
type Sheet struct {
	Properties SheetProperties `json:"properties"`
}

// SheetProperties holds tab metadata.
type SheetProperties struct {
	SheetID        int64           `json:"sheetId,omitempty"`
	Title          string          `json:"title"`
	GridProperties *GridProperties `json:"gridProperties,omitempty"`
}

// GridProperties sizes a tab.
type GridProperties struct {
	RowCount    int `json:"rowCount"`
	ColumnCount int `json:"columnCount"`
}

// Titles returns the tab titles in spreadsheet order.
func (s *Spreadsheet) Titles() []string {
	titles := make([]string, 0, len(s.Sheets))
	for _, sh := range s.Sheets {
		titles = append(titles, sh.Properties.Title)
	}
	return titles
}

// WholeSheet returns the A1 range covering an entire tab.
func WholeSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the default http.Client. Use an OAuth2-authorized
// client from NewServiceAccountHTTPClient in production.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit throttles API calls to rps requests per second. Zero disables.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Google Sheets API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewServiceAccountHTTPClient returns an http.Client authorized with the given
// service account JSON key.
func NewServiceAccountHTTPClient(ctx context.Context, jsonKey []byte, timeout time.Duration) (*http.Client, error) {
	jwtCfg, err := google.JWTConfigFromJSON(jsonKey, Scope)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: parse service account key")
	}
	hc := jwtCfg.Client(ctx)
	hc.Timeout = timeout
	return hc, nil
}

func (c *httpClient) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*Spreadsheet, error) {
	q := url.Values{"fields": {"spreadsheetId,sheets.properties"}}
	var out Spreadsheet
	if err := c.do(ctx, http.MethodGet, c.spreadsheetURL(spreadsheetID, "", q), nil, &out); err != nil {
		return nil, eris.Wrapf(err, "sheets: get spreadsheet %s", spreadsheetID)
	}
	return &out, nil
}

type valueRange struct {
	Range  string  `json:"range,omitempty"`
	Values [][]any `json:"values"`
}

func (c *httpClient) GetValues(ctx context.Context, spreadsheetID, a1Range string) ([][]string, error) {
	q := url.Values{
		"valueRenderOption":    {"UNFORMATTED_VALUE"},
		"dateTimeRenderOption": {"FORMATTED_STRING"},
	}
	var out valueRange
	if err := c.do(ctx, http.MethodGet, c.spreadsheetURL(spreadsheetID, "/values/"+url.PathEscape(a1Range), q), nil, &out); err != nil {
		return nil, eris.Wrapf(err, "sheets: get values %s", a1Range)
	}

	rows := make([][]string, len(out.Values))
	for i, r := range out.Values {
		cells := make([]string, len(r))
		for j, v := range r {
			cells[j] = cellString(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

func (c *httpClient) AppendValues(ctx context.Context, spreadsheetID, a1Range string, rows [][]any) error {
	q := url.Values{
		"valueInputOption": {"RAW"},
		"insertDataOption": {"INSERT_ROWS"},
	}
	body := valueRange{Range: a1Range, Values: rows}
	endpoint := c.spreadsheetURL(spreadsheetID, "/values/"+url.PathEscape(a1Range)+":append", q)
	if err := c.do(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return eris.Wrapf(err, "sheets: append values %s", a1Range)
	}
	return nil
}

func (c *httpClient) ClearValues(ctx context.Context, spreadsheetID, a1Range string) error {
	endpoint := c.spreadsheetURL(spreadsheetID, "/values/"+url.PathEscape(a1Range)+":clear", nil)
	if err := c.do(ctx, http.MethodPost, endpoint, struct{}{}, nil); err != nil {
		return eris.Wrapf(err, "sheets: clear values %s", a1Range)
	}
	return nil
}

type batchUpdateRequest struct {
	Requests []request `json:"requests"`
}

type request struct {
	AddSheet *addSheetRequest `json:"addSheet,omitempty"`
}

type addSheetRequest struct {
	Properties SheetProperties `json:"properties"`
}

func (c *httpClient) AddSheet(ctx context.Context, spreadsheetID, title string) error {
	body := batchUpdateRequest{Requests: []request{{
		AddSheet: &addSheetRequest{Properties: SheetProperties{
			Title: title,
			GridProperties: &GridProperties{
				RowCount:    defaultRowCount,
				ColumnCount: defaultColumnCount,
			},
		}},
	}}}
	if err := c.do(ctx, http.MethodPost, c.spreadsheetURL(spreadsheetID, ":batchUpdate", nil), body, nil); err != nil {
		return eris.Wrapf(err, "sheets: add sheet %q", title)
	}
	return nil
}

func (c *httpClient) spreadsheetURL(spreadsheetID, suffix string, q url.Values) string {
	u := c.baseURL + "/spreadsheets/" + url.PathEscape(spreadsheetID) + suffix
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *httpClient) do(ctx context.Context, method, endpoint string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "rate limit")
		}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: apiMessage(respBody)}
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

// apiMessage extracts error.message from a Google API error body.
func apiMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(t)
	}
}
