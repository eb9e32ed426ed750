package web

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/sloppy/scanreport-console/internal/db"
	"github.com/sloppy/scanreport-console/internal/filters"
	"github.com/sloppy/scanreport-console/internal/listctl"
	"github.com/sloppy/scanreport-console/internal/rest"
)

// listColumns are the report fields shown in the list table.
var listColumns = []string{"id", "timestamp", "location", "applications"}

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

// renderStatus writes status before the body, so a render failure can only
// be logged by the caller's middleware.
func renderStatus(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	if status == http.StatusOK {
		render(w, r, component)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = component.Render(r.Context(), w)
}

func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!doctype html><html lang=\"en\"><head>"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<meta charset=\"utf-8\">"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<title>%s</title>", html.EscapeString(title)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<script src=\"https://unpkg.com/htmx.org@1.9.12\"></script>"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, layoutStyles); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</head><body>"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<nav class=\"top-nav\"><a href=\"/scanreports\">Scan reports</a><a href=\"/views\">Saved views</a><a href=\"/journal\">Journal</a></nav>"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<main class=\"shell\">"); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</main></body></html>"); err != nil {
			return err
		}
		return nil
	})
}

func reportListPage(state listctl.State, views []db.SavedView, format filters.Formatter, notice string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<header class=\"page-header\"><p class=\"eyebrow\">Remote poller</p><h1>Scan reports</h1><p class=\"subhead\">Results reported by remote pollers, newest first.</p></header>"); err != nil {
			return err
		}
		if notice != "" {
			if _, err := fmt.Fprintf(w, "<p class=\"notice\">%s</p>", html.EscapeString(notice)); err != nil {
				return err
			}
		}

		q := state.Query
		if _, err := io.WriteString(w, "<section class=\"card\"><form method=\"get\" action=\"/scanreports\" class=\"filters\" hx-get=\"/scanreports\" hx-target=\"#report-table\" hx-push-url=\"true\">"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<label>Search<input name=\"_s\" value=\"%s\" placeholder=\"location==Default\"></label>", html.EscapeString(q.SearchParam)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<label>Sort<select name=\"orderBy\">"); err != nil {
			return err
		}
		for _, column := range []string{"timestamp", "id", "location", "applications"} {
			if _, err := fmt.Fprintf(w, "<option value=\"%s\"%s>%s</option>", column, selectedAttr(q.OrderBy == column), html.EscapeString(filters.Property(column))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</select></label><label>Direction<select name=\"order\">"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<option value=\"desc\"%s>Descending</option><option value=\"asc\"%s>Ascending</option>", selectedAttr(q.Order == "desc"), selectedAttr(q.Order == "asc")); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "</select></label><label>Page size<input name=\"limit\" type=\"number\" min=\"1\" max=\"%d\" value=\"%d\"></label>", maxLimit, q.Limit); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<div class=\"filter-actions\"><button type=\"submit\">Apply</button><a class=\"back-link\" href=\"/scanreports\">Reset</a></div></form></section>"); err != nil {
			return err
		}

		if err := reportTablePartial(state, format).Render(ctx, w); err != nil {
			return err
		}

		returnValue := listValues(q, q.Offset).Encode()
		if _, err := fmt.Fprintf(w, "<section class=\"card\"><h2>Save this view</h2><form method=\"post\" action=\"/views\" class=\"project-form\"><input type=\"hidden\" name=\"return\" value=\"%s\"><div class=\"project-form__row\"><input name=\"name\" placeholder=\"Failed scans\" required><button type=\"submit\">Save</button></div></form>", html.EscapeString(returnValue)); err != nil {
			return err
		}
		if len(views) > 0 {
			if _, err := io.WriteString(w, "<ul class=\"project-list\">"); err != nil {
				return err
			}
			for _, view := range views {
				if _, err := fmt.Fprintf(w, "<li><a class=\"project-link\" href=\"/views/%d\">%s</a></li>", view.ID, html.EscapeString(view.Name)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</ul>"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</section>"); err != nil {
			return err
		}

		exportValues := listValues(q, q.Offset)
		exportValues.Set("format", "json")
		jsonLink := "/scanreports/export?" + exportValues.Encode()
		exportValues.Set("format", "csv")
		csvLink := "/scanreports/export?" + exportValues.Encode()
		if _, err := fmt.Fprintf(w, "<div class=\"page-actions\"><a class=\"back-link\" href=\"%s\">Export JSON</a><a class=\"back-link\" href=\"%s\">Export CSV</a></div>", html.EscapeString(jsonLink), html.EscapeString(csvLink)); err != nil {
			return err
		}
		return nil
	})
	return layout("Scan reports", body)
}

// reportTablePartial is the list table, pager and selection pane. HTMX
// navigation swaps it in place.
func reportTablePartial(state listctl.State, format filters.Formatter) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		q := state.Query
		if _, err := io.WriteString(w, "<div id=\"report-table\"><section class=\"card\">"); err != nil {
			return err
		}
		if len(state.Items) == 0 {
			if _, err := io.WriteString(w, "<p class=\"empty\">No scan reports match the current query.</p></section></div>"); err != nil {
				return err
			}
			return nil
		}

		if _, err := fmt.Fprintf(w, "<p class=\"status-summary\">Showing %s to %s of %s</p>", humanize.Comma(int64(q.Offset+1)), humanize.Comma(int64(q.LastOffset+1)), humanize.Comma(int64(q.Total()))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<div class=\"table-wrap\"><table class=\"report-table\"><thead><tr>"); err != nil {
			return err
		}
		for _, column := range listColumns {
			if _, err := fmt.Fprintf(w, "<th>%s</th>", html.EscapeString(filters.Property(column))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</tr></thead><tbody>"); err != nil {
			return err
		}
		for _, report := range state.Items {
			values := listValues(q, q.Offset)
			values.Set("selected", report.ID)
			link := "/scanreports?" + values.Encode()
			rowClass := ""
			if state.Selected != nil && state.Selected.ID == report.ID {
				rowClass = " class=\"selected\""
			}
			if _, err := fmt.Fprintf(w, "<tr%s>", rowClass); err != nil {
				return err
			}
			for i, column := range listColumns {
				cell := html.EscapeString(reportCell(report, column, format))
				if i == 0 {
					cell = fmt.Sprintf("<a class=\"mono\" href=\"%s\" hx-get=\"%s\" hx-target=\"#report-table\" hx-push-url=\"true\">%s</a>", html.EscapeString(link), html.EscapeString(link), cell)
				}
				if _, err := fmt.Fprintf(w, "<td>%s</td>", cell); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</tr>"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</tbody></table></div>"); err != nil {
			return err
		}
		if err := pager(q).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</section>"); err != nil {
			return err
		}

		if state.Selected != nil {
			if err := selectedPane(*state.Selected, q).Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</div>"); err != nil {
			return err
		}
		return nil
	})
}

func pager(q listctl.Query) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<div class=\"pager\">"); err != nil {
			return err
		}
		if q.HasPrev() {
			prev := listLink(q, q.PrevOffset())
			if _, err := fmt.Fprintf(w, "<a class=\"pager-link\" href=\"%s\" hx-get=\"%s\" hx-target=\"#report-table\" hx-push-url=\"true\">Previous</a>", html.EscapeString(prev), html.EscapeString(prev)); err != nil {
				return err
			}
		} else {
			if _, err := io.WriteString(w, "<span class=\"pager-link disabled\">Previous</span>"); err != nil {
				return err
			}
		}
		if q.HasNext() {
			next := listLink(q, q.NextOffset())
			if _, err := fmt.Fprintf(w, "<a class=\"pager-link\" href=\"%s\" hx-get=\"%s\" hx-target=\"#report-table\" hx-push-url=\"true\">Next</a>", html.EscapeString(next), html.EscapeString(next)); err != nil {
				return err
			}
		} else {
			if _, err := io.WriteString(w, "<span class=\"pager-link disabled\">Next</span>"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</div>"); err != nil {
			return err
		}
		return nil
	})
}

func selectedPane(report rest.ScanReport, q listctl.Query) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		id := html.EscapeString(report.ID)
		escapedPath := url.PathEscape(report.ID)
		if _, err := fmt.Fprintf(w, "<section class=\"card\"><h2>Report <span class=\"mono\">%s</span></h2>", id); err != nil {
			return err
		}
		if err := propertyList(report.Properties).Render(ctx, w); err != nil {
			return err
		}
		returnValue := url.QueryEscape(listValues(q, q.Offset).Encode())
		if _, err := fmt.Fprintf(w, "<div class=\"page-actions\"><a class=\"back-link\" href=\"/scanreports/%s?return=%s\">Details</a><a class=\"back-link\" href=\"/scanreports/%s/logs\">Full logs</a></div>", escapedPath, returnValue, escapedPath); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<h3>Logs</h3><div hx-get=\"/scanreports/%s/logs\" hx-trigger=\"load\"><p class=\"muted\">Loading logs…</p></div></section>", escapedPath); err != nil {
			return err
		}
		return nil
	})
}

func propertyList(props []rest.Property) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(props) == 0 {
			_, err := io.WriteString(w, "<p class=\"muted\">No properties recorded.</p>")
			return err
		}
		if _, err := io.WriteString(w, "<dl class=\"report-meta\">"); err != nil {
			return err
		}
		for _, prop := range props {
			if _, err := fmt.Fprintf(w, "<div><dt title=\"%s\">%s</dt><dd>%s</dd></div>", html.EscapeString(prop.Key), html.EscapeString(filters.PrettyProperty(prop.Key)), html.EscapeString(prop.Value)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</dl>")
		return err
	})
}

func reportDetailPage(report rest.ScanReport, returnTo string, format filters.Formatter) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		id := html.EscapeString(report.ID)
		escapedPath := url.PathEscape(report.ID)
		if _, err := fmt.Fprintf(w, "<header class=\"page-header\"><p class=\"eyebrow\">Scan report</p><h1 class=\"mono\">%s</h1>", id); err != nil {
			return err
		}
		if !report.Timestamp.IsZero() {
			if _, err := fmt.Fprintf(w, "<p class=\"subhead\">Scanned %s</p>", html.EscapeString(humanize.Time(report.Timestamp.Time))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</header><section class=\"card\"><dl class=\"report-meta\">"); err != nil {
			return err
		}
		for _, column := range listColumns {
			if _, err := fmt.Fprintf(w, "<div><dt>%s</dt><dd>%s</dd></div>", html.EscapeString(filters.Property(column)), html.EscapeString(reportCell(report, column, format))); err != nil {
				return err
			}
		}
		for _, field := range []struct{ label, value string }{
			{"Label", report.Label},
			{"Status", report.Status},
			{"Type", report.Type},
			{"Date", report.Date},
		} {
			if field.value == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "<div><dt>%s</dt><dd>%s</dd></div>", field.label, html.EscapeString(field.value)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</dl></section><section class=\"card\"><h2>Properties</h2>"); err != nil {
			return err
		}
		if err := propertyList(report.Properties).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</section>"); err != nil {
			return err
		}

		escapedReturn := html.EscapeString(returnTo)
		if _, err := fmt.Fprintf(w, "<section class=\"card\"><h2>Edit</h2><form method=\"post\" action=\"/scanreports/%s\" class=\"notes-form\"><input type=\"hidden\" name=\"return\" value=\"%s\">", escapedPath, escapedReturn); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<label>Label<input name=\"label\" value=\"%s\"></label><label>Location<input name=\"location\" value=\"%s\"></label>", html.EscapeString(report.Label), html.EscapeString(report.Location)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<label>Properties (key=value per line)<textarea name=\"properties\" rows=\"6\">%s</textarea></label><button type=\"submit\">Save</button></form></section>", html.EscapeString(formatProperties(report.Properties))); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<section class=\"card\"><h2>Remove</h2><form method=\"post\" action=\"/scanreports/%s/delete\"><input type=\"hidden\" name=\"return\" value=\"%s\"><button class=\"ghost\" type=\"submit\">Delete report</button></form></section>", escapedPath, escapedReturn); err != nil {
			return err
		}

		back := "/scanreports"
		if returnTo != "" {
			back += "?" + returnTo
		}
		if _, err := fmt.Fprintf(w, "<div class=\"page-actions\"><a class=\"back-link\" href=\"/scanreports/%s/logs\">Logs</a><a class=\"back-link\" href=\"%s\">Back to list</a></div>", escapedPath, html.EscapeString(back)); err != nil {
			return err
		}
		return nil
	})
	return layout("Scan report "+report.ID, body)
}

func reportLogsPartial(logs rest.Logs) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if logs.Text == "" {
			_, err := io.WriteString(w, "<p class=\"empty\">No logs recorded for this report.</p>")
			return err
		}
		_, err := fmt.Fprintf(w, "<pre class=\"logs\">%s</pre>", html.EscapeString(logs.Text))
		return err
	})
}

func reportLogsPage(id string, logs rest.Logs) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<header class=\"page-header\"><p class=\"eyebrow\">Scan report logs</p><h1 class=\"mono\">%s</h1></header><section class=\"card\">", html.EscapeString(id)); err != nil {
			return err
		}
		if err := reportLogsPartial(logs).Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "</section><div class=\"page-actions\"><a class=\"back-link\" href=\"/scanreports/%s\">Details</a><a class=\"back-link\" href=\"/scanreports\">Back to list</a></div>", url.PathEscape(id)); err != nil {
			return err
		}
		return nil
	})
	return layout("Logs "+id, body)
}

func deleteConfirmPage(id, prompt, returnTo string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<header class=\"page-header\"><p class=\"eyebrow\">Confirm</p><h1>Remove scan report</h1></header><section class=\"card\"><p>%s</p>", html.EscapeString(prompt)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<form method=\"post\" action=\"/scanreports/%s/delete\" class=\"status-form\"><input type=\"hidden\" name=\"return\" value=\"%s\"><input type=\"hidden\" name=\"confirm\" value=\"yes\"><button type=\"submit\">Remove</button>", url.PathEscape(id), html.EscapeString(returnTo)); err != nil {
			return err
		}
		back := "/scanreports"
		if returnTo != "" {
			back += "?" + returnTo
		}
		if _, err := fmt.Fprintf(w, "<a class=\"back-link\" href=\"%s\">Cancel</a></form></section>", html.EscapeString(back)); err != nil {
			return err
		}
		return nil
	})
	return layout("Remove scan report", body)
}

func journalPage(entries []db.JournalEntry, format filters.Formatter) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<header class=\"page-header\"><p class=\"eyebrow\">Console</p><h1>Action journal</h1><p class=\"subhead\">Updates and deletions issued from this console.</p></header><section class=\"card\">"); err != nil {
			return err
		}
		if len(entries) == 0 {
			_, err := io.WriteString(w, "<p class=\"empty\">No actions recorded yet.</p></section>")
			return err
		}
		if _, err := io.WriteString(w, "<div class=\"table-wrap\"><table class=\"report-table\"><thead><tr><th>When</th><th>Action</th><th>Report</th><th>Result</th><th>Detail</th></tr></thead><tbody>"); err != nil {
			return err
		}
		for _, entry := range entries {
			if _, err := fmt.Fprintf(w, "<tr><td title=\"%s\">%s</td><td>%s</td><td><a class=\"mono\" href=\"/scanreports/%s\">%s</a></td><td>%s</td><td class=\"muted\">%s</td></tr>",
				html.EscapeString(format.Timestamp(entry.CreatedAt)),
				html.EscapeString(humanize.Time(entry.CreatedAt)),
				html.EscapeString(entry.Action),
				url.PathEscape(entry.ReportID),
				html.EscapeString(entry.ReportID),
				html.EscapeString(entry.Result),
				html.EscapeString(entry.Detail),
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tbody></table></div></section>")
		return err
	})
	return layout("Action journal", body)
}

func savedViewsPage(views []db.SavedView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<header class=\"page-header\"><p class=\"eyebrow\">Console</p><h1>Saved views</h1><p class=\"subhead\">Named searches over the scan report list.</p></header><section class=\"card\">"); err != nil {
			return err
		}
		if len(views) == 0 {
			_, err := io.WriteString(w, "<p class=\"empty\">No saved views yet. Save one from the scan report list.</p></section>")
			return err
		}
		if _, err := io.WriteString(w, "<ul class=\"project-list\">"); err != nil {
			return err
		}
		for _, view := range views {
			search := view.SearchParam
			if search == "" {
				search = "all reports"
			}
			if _, err := fmt.Fprintf(w, "<li><a class=\"project-link\" href=\"/views/%d\">%s</a><span class=\"muted mono\">%s</span><form method=\"post\" action=\"/views/%d/delete\"><button class=\"ghost\" type=\"submit\">Delete</button></form></li>", view.ID, html.EscapeString(view.Name), html.EscapeString(search), view.ID); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul></section>")
		return err
	})
	return layout("Saved views", body)
}

// reportCell is the display text of one list column.
func reportCell(report rest.ScanReport, column string, format filters.Formatter) string {
	switch column {
	case "id":
		return report.ID
	case "timestamp":
		if report.Timestamp.IsZero() {
			return ""
		}
		return fmt.Sprint(format.Value(report.Timestamp.Time, column))
	case "location":
		return report.Location
	case "applications":
		return report.Applications.String()
	default:
		value, _ := report.PropertyValue(column)
		return value
	}
}

func selectedAttr(selected bool) string {
	if selected {
		return " selected"
	}
	return ""
}

const layoutStyles = `<style>
:root {
  color-scheme: light;
  --bg: #eef1f4;
  --bg-accent: #dde8f3;
  --ink: #1b2430;
  --muted: #5b6878;
  --card: rgba(255, 255, 255, 0.85);
  --stroke: rgba(27, 36, 48, 0.12);
  --accent: #2a5d8f;
  --accent-dark: #1c4166;
  --danger: #a23b2c;
  --shadow: 0 12px 32px rgba(15, 23, 28, 0.1);
}

* {
  box-sizing: border-box;
}

body {
  margin: 0;
  min-height: 100vh;
  font-family: "Inter", "Segoe UI", "Helvetica Neue", sans-serif;
  color: var(--ink);
  background: radial-gradient(circle at 80% 0%, var(--bg-accent), transparent 40%),
    linear-gradient(160deg, #f7f9fb, var(--bg));
}

.top-nav {
  display: flex;
  gap: 20px;
  padding: 14px 24px;
  border-bottom: 1px solid var(--stroke);
  background: rgba(255, 255, 255, 0.7);
}

.top-nav a {
  color: var(--accent-dark);
  text-decoration: none;
  font-weight: 600;
}

.shell {
  max-width: 1040px;
  margin: 0 auto;
  padding: 36px 24px 64px;
  display: grid;
  gap: 20px;
}

.page-header h1 {
  margin: 6px 0;
  font-size: clamp(1.8rem, 3vw, 2.3rem);
}

.eyebrow {
  text-transform: uppercase;
  letter-spacing: 0.2em;
  font-size: 0.72rem;
  color: var(--muted);
  margin: 0;
}

.subhead {
  margin: 0;
  color: var(--muted);
}

.notice {
  margin: 0;
  padding: 12px 16px;
  border-radius: 10px;
  border: 1px solid var(--danger);
  color: var(--danger);
  background: rgba(162, 59, 44, 0.06);
}

.card {
  background: var(--card);
  border: 1px solid var(--stroke);
  border-radius: 14px;
  padding: 18px 20px;
  box-shadow: var(--shadow);
}

.project-form,
.notes-form {
  display: grid;
  gap: 10px;
}

.project-form__row {
  display: flex;
  gap: 12px;
  flex-wrap: wrap;
}

input,
select,
textarea {
  border-radius: 8px;
  border: 1px solid var(--stroke);
  padding: 8px 10px;
  font-size: 0.95rem;
  font-family: inherit;
}

input {
  flex: 1;
  min-width: 160px;
}

button {
  border: none;
  border-radius: 999px;
  padding: 9px 18px;
  background: var(--accent);
  color: white;
  font-size: 0.95rem;
  cursor: pointer;
  font-family: inherit;
}

button:hover {
  background: var(--accent-dark);
}

.ghost {
  background: transparent;
  color: var(--danger);
  border: 1px solid var(--danger);
}

.project-list {
  list-style: none;
  padding: 0;
  margin: 12px 0 0;
  display: grid;
  gap: 10px;
}

.project-list li {
  display: flex;
  align-items: center;
  justify-content: space-between;
  gap: 12px;
}

.project-link,
.back-link,
.pager-link {
  color: var(--accent);
  text-decoration: none;
  font-weight: 600;
}

.page-actions {
  display: flex;
  gap: 18px;
  flex-wrap: wrap;
}

.empty,
.muted,
.status-summary,
.pager-status {
  color: var(--muted);
}

.filters {
  display: grid;
  gap: 12px;
  grid-template-columns: 2fr 1fr 1fr 1fr;
  align-items: end;
}

.filters label,
.notes-form label {
  display: grid;
  gap: 6px;
  font-size: 0.8rem;
  color: var(--muted);
}

.filter-actions {
  display: flex;
  gap: 12px;
  align-items: center;
}

.table-wrap {
  width: 100%;
  overflow-x: auto;
}

.report-table {
  width: 100%;
  border-collapse: collapse;
  min-width: 620px;
}

.report-table th,
.report-table td {
  text-align: left;
  padding: 10px;
  border-bottom: 1px solid var(--stroke);
}

.report-table th {
  font-size: 0.78rem;
  letter-spacing: 0.08em;
  text-transform: uppercase;
  color: var(--muted);
}

.report-table tr.selected td {
  background: rgba(42, 93, 143, 0.08);
}

.mono,
.logs {
  font-family: "SFMono-Regular", "Fira Mono", "Source Code Pro", monospace;
}

.logs {
  white-space: pre-wrap;
  max-height: 480px;
  overflow-y: auto;
  margin: 0;
}

.pager {
  display: flex;
  justify-content: center;
  gap: 16px;
  margin-top: 14px;
}

.pager-link.disabled {
  color: var(--muted);
  cursor: default;
}

.status-form {
  display: flex;
  align-items: center;
  gap: 12px;
}

.report-meta {
  display: grid;
  gap: 10px;
  grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
  margin: 0;
}

.report-meta div {
  background: rgba(255, 255, 255, 0.6);
  padding: 8px 10px;
  border-radius: 8px;
  border: 1px solid var(--stroke);
}

.report-meta dt {
  font-size: 0.72rem;
  text-transform: uppercase;
  letter-spacing: 0.08em;
  color: var(--muted);
}

.report-meta dd {
  margin: 4px 0 0;
  word-break: break-word;
}

@media (max-width: 700px) {
  .filters {
    grid-template-columns: 1fr;
  }

  button {
    width: 100%;
  }
}
</style>`
