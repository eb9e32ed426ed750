package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScanReport is one remote-poller scan run as served by the backend.
type ScanReport struct {
	ID           string     `json:"id"`
	Timestamp    Timestamp  `json:"timestamp"`
	Location     string     `json:"location,omitempty"`
	Applications StringList `json:"applications,omitempty"`
	Label        string     `json:"label,omitempty"`
	Properties   []Property `json:"properties,omitempty"`
	Status       string     `json:"status,omitempty"`
	Type         string     `json:"type,omitempty"`
	Date         string     `json:"date,omitempty"`

	// raw holds the object as the backend sent it, so an update can
	// write back every field the console does not edit untouched.
	raw map[string]json.RawMessage
}

func (r *ScanReport) UnmarshalJSON(data []byte) error {
	type plain ScanReport
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ScanReport(p)
	r.raw = raw
	return nil
}

// updateBody encodes r for a PUT. A report decoded from the backend is sent
// back as received with only label, location and properties replaced.
func (r ScanReport) updateBody() ([]byte, error) {
	if r.raw == nil {
		return json.Marshal(r)
	}
	out := make(map[string]json.RawMessage, len(r.raw)+3)
	for k, v := range r.raw {
		out[k] = v
	}
	props := r.Properties
	if props == nil {
		props = []Property{}
	}
	for key, value := range map[string]any{
		"label":      r.Label,
		"location":   r.Location,
		"properties": props,
	} {
		_, present := r.raw[key]
		if !present && isEmptyEditable(value) {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		out[key] = encoded
	}
	return json.Marshal(out)
}

func isEmptyEditable(v any) bool {
	switch v := v.(type) {
	case string:
		return v == ""
	case []Property:
		return len(v) == 0
	}
	return false
}

// Property is a single key/value pair attached to a report.
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PropertyValue returns the value stored under key.
func (r ScanReport) PropertyValue(key string) (string, bool) {
	for _, p := range r.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Timestamp accepts epoch milliseconds or an RFC 3339 string and is written
// back as epoch milliseconds.
type Timestamp struct {
	time.Time
}

// Millis returns the epoch milliseconds, 0 for an unset timestamp.
func (t Timestamp) Millis() int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] != '"' {
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("timestamp %s: %w", data, err)
		}
		t.Time = time.UnixMilli(ms)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.UnixMilli(ms)
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05-0700"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// StringList decodes either a JSON array of strings or a single string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var out []string
		if err := json.Unmarshal(data, &out); err != nil {
			return err
		}
		*l = out
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = StringList{single}
	return nil
}

// String joins the entries with ", ".
func (l StringList) String() string {
	return strings.Join(l, ", ")
}

// Logs is the log text recorded for one scan report. Text is empty when the
// backend has no log for the report.
type Logs struct {
	Text    string
	Outcome Outcome
}

// envelopeKey names the property that wraps list responses.
const envelopeKey = "scan-report"

// unwrapReports normalizes the list envelope into a slice. The wrapped value
// may be an array, a single object, or absent.
func unwrapReports(body []byte) ([]ScanReport, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []ScanReport{}, nil
	}
	if body[0] == '[' {
		var reports []ScanReport
		if err := json.Unmarshal(body, &reports); err != nil {
			return nil, fmt.Errorf("decode scan report array: %w", err)
		}
		return reports, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode scan report envelope: %w", err)
	}
	raw := bytes.TrimSpace(envelope[envelopeKey])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []ScanReport{}, nil
	}
	if raw[0] == '[' {
		reports := []ScanReport{}
		if err := json.Unmarshal(raw, &reports); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelopeKey, err)
		}
		return reports, nil
	}
	var single ScanReport
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode %s: %w", envelopeKey, err)
	}
	return []ScanReport{single}, nil
}
