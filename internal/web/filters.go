package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sloppy/scanreport-console/internal/listctl"
	"github.com/sloppy/scanreport-console/internal/rest"
)

const maxLimit = 500

func parseInt(value string, fallback int) int {
	val, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || val < 0 {
		return fallback
	}
	return val
}

func isHTMXRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// parseListQuery binds list query parameters, using the backend's own names
// (_s, limit, offset, orderBy, order).
func parseListQuery(values url.Values, defaultLimit int) listctl.Query {
	q := listctl.DefaultQuery(defaultLimit)
	q.SearchParam = strings.TrimSpace(values.Get("_s"))
	if limit := parseInt(values.Get("limit"), defaultLimit); limit > 0 && limit <= maxLimit {
		q.Limit = limit
	}
	q.SetOffset(parseInt(values.Get("offset"), 0))
	q.OrderBy = normalizeSort(values.Get("orderBy"))
	q.Order = normalizeDir(values.Get("order"))
	return q
}

// listValues is the inverse of parseListQuery.
func listValues(q listctl.Query, offset int) url.Values {
	values := url.Values{}
	if q.SearchParam != "" {
		values.Set("_s", q.SearchParam)
	}
	values.Set("limit", strconv.Itoa(q.Limit))
	values.Set("offset", strconv.Itoa(offset))
	values.Set("orderBy", q.OrderBy)
	values.Set("order", q.Order)
	return values
}

func listLink(q listctl.Query, offset int) string {
	return "/scanreports?" + listValues(q, offset).Encode()
}

func normalizeSort(raw string) string {
	switch strings.TrimSpace(raw) {
	case "id", "timestamp", "location", "applications", "label", "status", "type", "date":
		return strings.TrimSpace(raw)
	default:
		return listctl.DefaultOrderBy
	}
}

func normalizeDir(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc":
		return "asc"
	default:
		return "desc"
	}
}

// parseProperties reads "key=value" lines. Lines without "=" become keys
// with empty values; blank lines are skipped.
func parseProperties(raw string) []rest.Property {
	var props []rest.Property
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		props = append(props, rest.Property{Key: key, Value: strings.TrimSpace(value)})
	}
	return props
}

func formatProperties(props []rest.Property) string {
	lines := make([]string, 0, len(props))
	for _, p := range props {
		lines = append(lines, p.Key+"="+p.Value)
	}
	return strings.Join(lines, "\n")
}

// returnQuery recovers the list query a form was submitted from.
func returnQuery(r *http.Request, defaultLimit int) listctl.Query {
	values, err := url.ParseQuery(r.FormValue("return"))
	if err != nil {
		values = url.Values{}
	}
	return parseListQuery(values, defaultLimit)
}
