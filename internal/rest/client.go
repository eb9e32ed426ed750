// Package rest talks to the scan report REST endpoints of the backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sloppy/scanreport-console/internal/contentrange"
	"github.com/sloppy/scanreport-console/internal/metrics"
)

const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	BaseURL    string
	Username   string
	Password   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// Client maps scan report CRUD verbs onto HTTP calls against a base URL.
type Client struct {
	base     *url.URL
	http     *http.Client
	username string
	password string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New validates the base URL and builds a Client. Redirects are never
// followed so that login redirects stay visible to the caller.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	noRedirect := *httpClient
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:     base,
		http:     &noRedirect,
		username: opts.Username,
		password: opts.Password,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// BaseURL returns the configured endpoint root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Params are the list query parameters understood by the backend.
type Params struct {
	SearchParam string
	Limit       int
	Offset      int
	OrderBy     string
	Order       string
}

// Values encodes the parameters; SearchParam travels as the FIQL "_s" key.
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.SearchParam != "" {
		v.Set("_s", p.SearchParam)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	v.Set("offset", strconv.Itoa(p.Offset))
	if p.OrderBy != "" {
		v.Set("orderBy", p.OrderBy)
	}
	if p.Order != "" {
		v.Set("order", p.Order)
	}
	return v
}

// Page is one window of the scan report list.
type Page struct {
	Reports []ScanReport
	Range   contentrange.Range
	Outcome Outcome
}

// Query fetches a page of reports. 204 yields an empty page; a 302 is
// reported as OutcomeRedirect with an empty page and is otherwise left alone.
func (c *Client) Query(ctx context.Context, params Params) (Page, error) {
	resp, err := c.do(ctx, "query", http.MethodGet, c.endpoint(params.Values()), nil)
	if err != nil {
		return Page{Outcome: OutcomeUnclassified}, err
	}
	defer resp.Body.Close()

	page := Page{
		Reports: []ScanReport{},
		Range:   contentrange.Parse(resp.Header.Get("Content-Range")),
		Outcome: Classify(resp.StatusCode),
	}
	switch page.Outcome {
	case OutcomeEmpty:
		return page, nil
	case OutcomeRedirect:
		c.logger.Warn("scan report query redirected", "location", resp.Header.Get("Location"))
		return page, nil
	case OutcomeOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Page{Outcome: OutcomeUnclassified}, fmt.Errorf("query: read body: %w", err)
		}
		reports, err := unwrapReports(body)
		if err != nil {
			return Page{Outcome: OutcomeUnclassified}, fmt.Errorf("query: %w", err)
		}
		page.Reports = reports
		return page, nil
	default:
		return Page{Outcome: page.Outcome}, statusError("query", resp)
	}
}

// Get fetches a single report by id.
func (c *Client) Get(ctx context.Context, id string) (ScanReport, error) {
	resp, err := c.do(ctx, "get", http.MethodGet, c.endpoint(nil, id), nil)
	if err != nil {
		return ScanReport{}, err
	}
	defer resp.Body.Close()

	if Classify(resp.StatusCode) != OutcomeOK {
		return ScanReport{}, statusError("get", resp)
	}
	var report ScanReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return ScanReport{}, fmt.Errorf("get: decode: %w", err)
	}
	return report, nil
}

// Update writes the full report back with PUT.
func (c *Client) Update(ctx context.Context, report ScanReport) error {
	if report.ID == "" {
		return fmt.Errorf("update: report id is required")
	}
	body, err := report.updateBody()
	if err != nil {
		return fmt.Errorf("update: encode: %w", err)
	}
	resp, err := c.do(ctx, "update", http.MethodPut, c.endpoint(nil, report.ID), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch Classify(resp.StatusCode) {
	case OutcomeOK, OutcomeEmpty:
		return nil
	}
	return statusError("update", resp)
}

// Delete removes the report with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.do(ctx, "delete", http.MethodDelete, c.endpoint(nil, id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch Classify(resp.StatusCode) {
	case OutcomeOK, OutcomeEmpty:
		return nil
	}
	return statusError("delete", resp)
}

// Logs fetches the log text of a report. 204 and 404 yield empty text; a
// redirect means the session went away and is reported as ErrSessionExpired.
func (c *Client) Logs(ctx context.Context, id string) (Logs, error) {
	resp, err := c.do(ctx, "logs", http.MethodGet, c.endpoint(nil, id, "logs"), nil)
	if err != nil {
		return Logs{Outcome: OutcomeUnclassified}, err
	}
	defer resp.Body.Close()

	outcome := Classify(resp.StatusCode)
	switch outcome {
	case OutcomeEmpty, OutcomeNotFound:
		return Logs{Outcome: outcome}, nil
	case OutcomeRedirect:
		return Logs{Outcome: OutcomeSessionExpired}, fmt.Errorf("logs: redirected to %q: %w", resp.Header.Get("Location"), ErrSessionExpired)
	case OutcomeOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Logs{Outcome: OutcomeUnclassified}, fmt.Errorf("logs: read body: %w", err)
		}
		return Logs{Text: string(body), Outcome: OutcomeOK}, nil
	default:
		return Logs{Outcome: outcome}, statusError("logs", resp)
	}
}

func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := *c.base
	u.Path += "/scanreports"
	u.RawPath = c.base.EscapedPath() + "/scanreports"
	for _, segment := range segments {
		u.Path += "/" + segment
		u.RawPath += "/" + url.PathEscape(segment)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, target string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(ctx, req)

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveREST(op, OutcomeUnclassified.String(), elapsed)
		c.logger.Error("backend request failed", "op", op, "method", method, "url", target, "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	outcome := Classify(resp.StatusCode)
	c.metrics.ObserveREST(op, outcome.String(), elapsed)
	c.logger.Debug("backend request", "op", op, "method", method, "url", target, "status", resp.StatusCode, "duration", elapsed)
	return resp, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) {
	creds, ok := CredentialsFrom(ctx)
	if ok && creds.Authorization != "" {
		req.Header.Set("Authorization", creds.Authorization)
	} else if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	if ok && creds.Cookie != "" {
		req.Header.Set("Cookie", creds.Cookie)
	}
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
