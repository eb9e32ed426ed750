package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sloppy/scanreport-console/internal/db"
	"github.com/sloppy/scanreport-console/internal/metrics"
	"github.com/sloppy/scanreport-console/internal/rest"
	"github.com/sloppy/scanreport-console/internal/testutil"
)

// fakeReports is an in-memory backend with the REST client's error shapes.
type fakeReports struct {
	mu        sync.Mutex
	reports   []rest.ScanReport
	logs      map[string]string
	queryErr  error
	getErr    error
	creds     rest.Credentials
	params    []rest.Params
	updated   []rest.ScanReport
	deleted   []string
	getCalled int
}

func (f *fakeReports) Query(ctx context.Context, params rest.Params) (rest.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds, _ = rest.CredentialsFrom(ctx)
	f.params = append(f.params, params)
	if f.queryErr != nil {
		return rest.Page{}, f.queryErr
	}

	var matched []rest.ScanReport
	for _, report := range f.reports {
		if loc, ok := strings.CutPrefix(params.SearchParam, "location=="); ok && report.Location != loc {
			continue
		}
		matched = append(matched, report)
	}
	if len(matched) == 0 || params.Offset >= len(matched) {
		return rest.Page{}, &rest.StatusError{Op: "query scan reports", StatusCode: http.StatusNotFound}
	}
	end := len(matched)
	if params.Limit > 0 && params.Offset+params.Limit < end {
		end = params.Offset + params.Limit
	}
	page := rest.Page{
		Reports: append([]rest.ScanReport(nil), matched[params.Offset:end]...),
		Outcome: rest.OutcomeOK,
	}
	page.Range.Start = params.Offset
	page.Range.End = end - 1
	page.Range.Total = len(matched)
	return page, nil
}

func (f *fakeReports) Get(ctx context.Context, id string) (rest.ScanReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalled++
	if f.getErr != nil {
		return rest.ScanReport{}, f.getErr
	}
	for _, report := range f.reports {
		if report.ID == id {
			return report, nil
		}
	}
	return rest.ScanReport{}, &rest.StatusError{Op: "get scan report", StatusCode: http.StatusNotFound}
}

func (f *fakeReports) Update(ctx context.Context, report rest.ScanReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, report)
	for i := range f.reports {
		if f.reports[i].ID == report.ID {
			f.reports[i] = report
		}
	}
	return nil
}

func (f *fakeReports) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	kept := f.reports[:0]
	for _, report := range f.reports {
		if report.ID != id {
			kept = append(kept, report)
		}
	}
	f.reports = kept
	return nil
}

func (f *fakeReports) Logs(ctx context.Context, id string) (rest.Logs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, ok := f.logs[id]
	if !ok {
		return rest.Logs{Outcome: rest.OutcomeNotFound}, nil
	}
	return rest.Logs{Text: text, Outcome: rest.OutcomeOK}, nil
}

func sampleReports() []rest.ScanReport {
	ts := rest.Timestamp{Time: time.UnixMilli(1700000000000)}
	return []rest.ScanReport{
		{ID: "r1", Timestamp: ts, Location: "Default", Applications: rest.StringList{"HTTP"}, Properties: []rest.Property{{Key: "org.opennms.netmgt.poller.remote.os.name", Value: "Linux"}}},
		{ID: "r2", Timestamp: ts, Location: "Remote", Applications: rest.StringList{"DNS", "ICMP"}},
		{ID: "r3", Timestamp: ts, Location: "Default"},
	}
}

func newTestServer(t *testing.T) (*db.DB, *fakeReports, *Server) {
	t.Helper()
	dir := testutil.TempDir(t)
	database, err := db.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	backend := &fakeReports{
		reports: sampleReports(),
		logs:    map[string]string{"r1": "scan started\nscan finished"},
	}
	server := NewServer(backend, database, Options{Location: time.UTC, DefaultLimit: 2})
	return database, backend, server
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestReportListRendersPage(t *testing.T) {
	_, backend, server := newTestServer(t)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/scanreports", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<!doctype html>", "Scan Time", "Application", "r1", "r2", "Nov 14, 2023 10:13:20 PM", "DNS, ICMP", "Showing 1 to 2 of 3"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %q", want)
		}
	}
	if strings.Contains(body, ">r3<") {
		t.Fatalf("expected r3 on the next page")
	}
	if !strings.Contains(body, "offset=2") {
		t.Fatalf("expected next page link")
	}

	got := backend.params[0]
	if got.Limit != 2 || got.Offset != 0 || got.OrderBy != "timestamp" || got.Order != "desc" || got.SearchParam != "" {
		t.Fatalf("unexpected backend params: %#v", got)
	}
}

func TestReportListHTMXPartial(t *testing.T) {
	_, _, server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/scanreports?offset=2", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(server, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<!doctype html>") {
		t.Fatalf("expected partial without layout")
	}
	if !strings.Contains(body, "id=\"report-table\"") || !strings.Contains(body, "r3") {
		t.Fatalf("expected table partial with r3, got %s", body)
	}
	if !strings.Contains(body, "<span class=\"pager-link disabled\">Next</span>") {
		t.Fatalf("expected next to be disabled on the last page")
	}
}

func TestReportListNotFoundIsEmpty(t *testing.T) {
	_, _, server := newTestServer(t)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/scanreports?_s=location%3D%3DNowhere", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No scan reports match the current query.") {
		t.Fatalf("expected empty message")
	}
}

func TestReportListSessionExpired(t *testing.T) {
	t.Run("full page challenges", func(t *testing.T) {
		_, backend, server := newTestServer(t)
		backend.queryErr = &rest.StatusError{Op: "query scan reports", StatusCode: http.StatusUnauthorized}

		rec := serve(server, httptest.NewRequest(http.MethodGet, "/scanreports?offset=2", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") == "" {
			t.Fatalf("expected WWW-Authenticate challenge")
		}
		if !strings.Contains(rec.Body.String(), "/scanreports?offset=2") {
			t.Fatalf("expected reload link to the current URL")
		}
	})

	t.Run("htmx redirects to current page", func(t *testing.T) {
		_, backend, server := newTestServer(t)
		backend.queryErr = &rest.StatusError{Op: "query scan reports", StatusCode: http.StatusForbidden}

		req := httptest.NewRequest(http.MethodGet, "/scanreports?offset=2", nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Current-URL", "http://console.local/scanreports?_s=x")
		rec := serve(server, req)
		if got := rec.Header().Get("HX-Redirect"); got != "http://console.local/scanreports?_s=x" {
			t.Fatalf("expected HX-Redirect to current URL, got %q", got)
		}
	})
}

func TestReportListBackendFailure(t *testing.T) {
	_, backend, server := newTestServer(t)
	backend.queryErr = &rest.StatusError{Op: "query scan reports", StatusCode: http.StatusInternalServerError}

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/scanreports", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), backendUnavailable) {
		t.Fatalf("expected unavailable notice")
	}
}

func TestReportListSelectionAndCredentials(t *testing.T) {
	_, backend, server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/scanreports?selected=r1", nil)
	req.Header.Set("Authorization", "Basic YWRtaW46YWRtaW4=")
	req.Header.Set("Cookie", "JSESSIONID=abc")
	rec := serve(server, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Report <span class=\"mono\">r1</span>") {
		t.Fatalf("expected selection pane for r1")
	}
	if !strings.Contains(body, "OS Name") {
		t.Fatalf("expected pretty property label")
	}
	if !strings.Contains(body, "hx-get=\"/scanreports/r1/logs\"") {
		t.Fatalf("expected lazy logs pane")
	}
	if backend.creds.Authorization != "Basic YWRtaW46YWRtaW4=" || backend.creds.Cookie != "JSESSIONID=abc" {
		t.Fatalf("expected forwarded credentials, got %#v", backend.creds)
	}
}

func TestReportDetailAndLogs(t *testing.T) {
	_, _, server := newTestServer(t)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/scanreports/r1?return=offset%3D0", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Scanned ") || !strings.Contains(body, "org.opennms.netmgt.poller.remote.os.name=Linux") {
		t.Fatalf("expected detail page with edit form, got %s", body)
	}

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/scanreports/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/scanreports/r1/logs", nil)
	req.Header.Set("HX-Request", "true")
	rec = serve(server, req)
	if !strings.Contains(rec.Body.String(), "scan finished") {
		t.Fatalf("expected log text, got %s", rec.Body.String())
	}

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/scanreports/r2/logs", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "No logs recorded") {
		t.Fatalf("expected empty logs page, got %d", rec.Code)
	}
}

func TestReportUpdate(t *testing.T) {
	database, backend, server := newTestServer(t)

	form := url.Values{}
	form.Set("label", "edge")
	form.Set("location", "Remote")
	form.Set("properties", "os=linux\n\nrack = 4")
	form.Set("return", "offset=0&limit=2")
	rec := serve(server, postForm("/scanreports/r1", form))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "selected=r1") {
		t.Fatalf("expected redirect back to selection, got %q", loc)
	}

	if len(backend.updated) != 1 {
		t.Fatalf("expected one update, got %d", len(backend.updated))
	}
	got := backend.updated[0]
	if got.Label != "edge" || got.Location != "Remote" || len(got.Properties) != 2 || got.Properties[1].Key != "rack" || got.Properties[1].Value != "4" {
		t.Fatalf("unexpected update payload: %#v", got)
	}
	if got.Applications.String() != "HTTP" {
		t.Fatalf("expected server copy fields to be kept, got %#v", got.Applications)
	}

	entries, err := database.ListJournal(10)
	if err != nil {
		t.Fatalf("list journal: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != db.ActionUpdate || entries[0].Result != "ok" {
		t.Fatalf("unexpected journal: %#v", entries)
	}
}

func TestReportDeleteConfirmFlow(t *testing.T) {
	database, backend, server := newTestServer(t)

	form := url.Values{}
	form.Set("return", "limit=2")
	rec := serve(server, postForm("/scanreports/r1/delete", form))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected confirm page, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Are you sure you want to remove scan report &#34;r1&#34;?") {
		t.Fatalf("expected prompt, got %s", rec.Body.String())
	}
	if len(backend.deleted) != 0 {
		t.Fatalf("expected no delete before confirmation")
	}

	form.Set("confirm", "yes")
	rec = serve(server, postForm("/scanreports/r1/delete", form))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "r1" {
		t.Fatalf("expected r1 deleted, got %v", backend.deleted)
	}

	entries, err := database.ListJournal(10)
	if err != nil {
		t.Fatalf("list journal: %v", err)
	}
	if len(entries) != 1 || entries[0].Result != "removed" {
		t.Fatalf("expected one removed entry, got %#v", entries)
	}
}

func TestReportDeleteAlreadyGone(t *testing.T) {
	database, backend, server := newTestServer(t)

	form := url.Values{}
	form.Set("confirm", "yes")
	rec := serve(server, postForm("/scanreports/ghost/delete", form))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if len(backend.deleted) != 0 {
		t.Fatalf("expected no delete for a missing report")
	}
	if len(backend.params) != 1 {
		t.Fatalf("expected the list to be refreshed, got %d queries", len(backend.params))
	}

	entries, err := database.ListJournal(10)
	if err != nil {
		t.Fatalf("list journal: %v", err)
	}
	if len(entries) != 1 || entries[0].Result != "already_gone" {
		t.Fatalf("unexpected journal: %#v", entries)
	}

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/journal", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "already_gone") {
		t.Fatalf("expected journal page to list the entry")
	}
}

func TestSavedViews(t *testing.T) {
	_, _, server := newTestServer(t)

	form := url.Values{}
	form.Set("name", "Default only")
	form.Set("return", "_s=location%3D%3DDefault&limit=5&orderBy=location&order=asc")
	rec := serve(server, postForm("/views", form))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/views", nil))
	if !strings.Contains(rec.Body.String(), "Default only") {
		t.Fatalf("expected saved view in list")
	}

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/views/1", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	target, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	q := target.Query()
	if q.Get("_s") != "location==Default" || q.Get("limit") != "5" || q.Get("orderBy") != "location" || q.Get("order") != "asc" {
		t.Fatalf("unexpected view link: %s", target)
	}

	rec = serve(server, postForm("/views/1/delete", url.Values{}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	rec = serve(server, postForm("/views/1/delete", url.Values{}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted view, got %d", rec.Code)
	}
}

func TestExportFormats(t *testing.T) {
	_, _, server := newTestServer(t)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/scanreports/export?format=csv&limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected csv content type, got %q", ct)
	}
	if lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n"); len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(lines))
	}

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/scanreports/export?format=json", nil))
	var payload struct {
		ScanReports []rest.ScanReport `json:"scan_reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode json export: %v", err)
	}
	if len(payload.ScanReports) != 2 {
		t.Fatalf("expected the current page of 2 reports, got %d", len(payload.ScanReports))
	}

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/scanreports/export?format=xml", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAPIListReports(t *testing.T) {
	_, _, server := newTestServer(t)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/api/scanreports?offset=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "items 1-2/3" {
		t.Fatalf("unexpected Content-Range %q", got)
	}
	var payload apiListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Query.MaxOffset != 2 || payload.Query.LastOffset != 2 || len(payload.ScanReports) != 2 {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestAPIReportLifecycle(t *testing.T) {
	_, backend, server := newTestServer(t)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/api/scanreports/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/scanreports/r2", strings.NewReader(`{"label":"api","location":"Lab"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = serve(server, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if backend.updated[0].ID != "r2" || backend.updated[0].Location != "Lab" {
		t.Fatalf("unexpected update: %#v", backend.updated[0])
	}

	rec = serve(server, httptest.NewRequest(http.MethodDelete, "/api/scanreports/r2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"result":"removed"`) {
		t.Fatalf("unexpected delete body %s", rec.Body.String())
	}

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/api/scanreports/r1/logs", nil))
	if !strings.Contains(rec.Body.String(), "scan started") {
		t.Fatalf("expected logs text, got %s", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	_, _, server := newTestServer(t)
	rec := serve(server, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := NewServer(&fakeReports{reports: sampleReports()}, nil, Options{Metrics: metrics.New()})

	serve(server, httptest.NewRequest(http.MethodGet, "/scanreports", nil))
	rec := serve(server, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `scanreport_http_requests_total{method="GET",status="200"} 1`) {
		t.Fatalf("expected request counter, got:\n%s", body)
	}
	if !strings.Contains(body, `scanreport_list_refreshes_total{result="ok"} 1`) {
		t.Fatalf("expected refresh counter, got:\n%s", body)
	}

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/journal", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected journal to be disabled without a database, got %d", rec.Code)
	}
}

func TestAPICrossOriginPreflight(t *testing.T) {
	preflight := func(server *Server, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/scanreports/r1", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		return serve(server, req)
	}

	t.Run("same-origin only by default", func(t *testing.T) {
		server := NewServer(&fakeReports{}, nil, Options{})
		rec := preflight(server, "https://evil.example")
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("expected no Access-Control-Allow-Origin, got %q", got)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "" {
			t.Fatalf("expected no Access-Control-Allow-Methods, got %q", got)
		}
	})

	t.Run("allowlist", func(t *testing.T) {
		server := NewServer(&fakeReports{}, nil, Options{AllowedOrigins: []string{"https://noc.example.com"}})
		rec := preflight(server, "https://evil.example")
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("expected foreign origin to be refused, got %q", got)
		}
		rec = preflight(server, "https://noc.example.com")
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://noc.example.com" {
			t.Fatalf("expected allowed origin to be echoed, got %q", got)
		}
	})
}

func TestAPISessionExpiryIsNotJournaled(t *testing.T) {
	database, backend, server := newTestServer(t)
	backend.getErr = &rest.StatusError{Op: "get scan report", StatusCode: http.StatusUnauthorized}

	req := httptest.NewRequest(http.MethodPut, "/api/scanreports/r1", strings.NewReader(`{"label":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(server, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on update, got %d", rec.Code)
	}

	rec = serve(server, httptest.NewRequest(http.MethodDelete, "/api/scanreports/r1", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on delete, got %d", rec.Code)
	}

	entries, err := database.ListJournal(10)
	if err != nil {
		t.Fatalf("list journal: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no journal entries for expired sessions, got %#v", entries)
	}
}
