// Package filters turns raw scan report keys and values into display text.
package filters

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// RemotePollerPrefix is stripped from property keys before they are labelled.
const RemotePollerPrefix = "org.opennms.netmgt.poller.remote"

// TimestampLayout renders scan times as "Jan 2, 2006 3:04:05 PM".
const TimestampLayout = "Jan 2, 2006 3:04:05 PM"

var abbreviations = map[string]bool{
	"id": true,
	"ip": true,
	"os": true,
}

// Property returns the column label for a scan report field.
func Property(input string) string {
	switch input {
	case "id":
		return "ID"
	case "timestamp":
		return "Scan Time"
	case "location":
		return "Location"
	case "applications":
		return "Application"
	}
	return input
}

// PrettyProperty converts a dotted or dashed property key into a label,
// e.g. "org.opennms.netmgt.poller.remote.os.name" becomes "OS Name".
func PrettyProperty(input string) string {
	input = strings.Replace(input, RemotePollerPrefix, "", 1)
	segments := strings.FieldsFunc(input, func(r rune) bool {
		return r == '.' || r == '-'
	})

	labels := make([]string, 0, len(segments))
	for _, segment := range segments {
		if abbreviations[segment] {
			labels = append(labels, strings.ToUpper(segment))
			continue
		}
		labels = append(labels, upperFirst(segment))
	}
	return strings.Join(labels, " ")
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Formatter renders field values in a fixed display location.
type Formatter struct {
	Location *time.Location
}

// Value formats input using time.Local for timestamps.
func Value(input any, property string) any {
	return Formatter{}.Value(input, property)
}

// Value formats input for display. Only the timestamp property is rewritten;
// every other value, and timestamps that cannot be read, are returned as-is.
func (f Formatter) Value(input any, property string) any {
	if property != "timestamp" {
		return input
	}
	ts, ok := toTime(input)
	if !ok {
		return input
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format(TimestampLayout)
}

// Timestamp formats t with TimestampLayout in the formatter's location.
func (f Formatter) Timestamp(t time.Time) string {
	out, _ := f.Value(t, "timestamp").(string)
	return out
}

func toTime(input any) (time.Time, bool) {
	switch v := input.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case int64:
		return time.UnixMilli(v), true
	case int:
		return time.UnixMilli(int64(v)), true
	case int32:
		return time.UnixMilli(int64(v)), true
	case uint64:
		if v > math.MaxInt64 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v)), true
	case float64:
		return time.UnixMilli(int64(v)), true
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms), true
	case string:
		if ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return time.UnixMilli(ms), true
		}
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
