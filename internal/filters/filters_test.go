package filters

import (
	"encoding/json"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrettyProperty(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"org.opennms.netmgt.poller.remote.os.name", "OS Name"},
		{"foo-bar", "Foo Bar"},
		{"", ""},
		{"hostname", "Hostname"},
		{"id", "ID"},
		{"ip", "IP"},
		{"os", "OS"},
		{"org.opennms.netmgt.poller.remote.ip-address", "IP Address"},
		{"monitor.id.primary", "Monitor ID Primary"},
		{"java.vm-version", "Java Vm Version"},
		{"osName", "OsName"},
		{"a..b", "A B"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, PrettyProperty(tc.in))
		})
	}
}

func TestPrettyPropertyAbbreviationsAnywhere(t *testing.T) {
	for _, abbr := range []string{"id", "ip", "os"} {
		for _, key := range []string{abbr + ".tail", "head." + abbr, "head-" + abbr + "-tail"} {
			got := PrettyProperty(key)
			assert.Contains(t, got, map[string]string{"id": "ID", "ip": "IP", "os": "OS"}[abbr], key)
		}
	}
}

func TestProperty(t *testing.T) {
	assert.Equal(t, "ID", Property("id"))
	assert.Equal(t, "Scan Time", Property("timestamp"))
	assert.Equal(t, "Location", Property("location"))
	assert.Equal(t, "Application", Property("applications"))
	assert.Equal(t, "label", Property("label"))
}

var timestampPattern = regexp.MustCompile(`^[A-Z][a-z]{2} \d{1,2}, \d{4} \d{1,2}:\d{2}:\d{2} (AM|PM)$`)

func TestValueTimestamp(t *testing.T) {
	f := Formatter{Location: time.UTC}

	got := f.Value(int64(1700000000000), "timestamp")
	assert.Equal(t, "Nov 14, 2023 10:13:20 PM", got)

	for _, in := range []any{
		int64(0),
		1700000000000,
		float64(1700000000000),
		json.Number("1700000000000"),
		"1700000000000",
		"2023-11-14T22:13:20Z",
		time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
	} {
		out, ok := f.Value(in, "timestamp").(string)
		if assert.True(t, ok, "%v", in) {
			assert.Regexp(t, timestampPattern, out)
		}
	}
}

func TestValueTimestampUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	got := Formatter{Location: loc}.Value(int64(1700000000000), "timestamp")
	assert.Equal(t, "Nov 14, 2023 5:13:20 PM", got)
}

func TestValuePassThrough(t *testing.T) {
	for _, in := range []any{
		"plain",
		42,
		nil,
		[]string{"a", "b"},
		map[string]string{"k": "v"},
		int64(1700000000000),
	} {
		assert.Equal(t, in, Value(in, "location"))
	}
}

func TestValueUnreadableTimestampUnchanged(t *testing.T) {
	assert.Equal(t, "yesterday", Value("yesterday", "timestamp"))
}

func TestValueOverflowingEpochUnchanged(t *testing.T) {
	huge := uint64(math.MaxUint64)
	assert.Equal(t, huge, Value(huge, "timestamp"))
	assert.Equal(t, "Nov 14, 2023 10:13:20 PM", Formatter{Location: time.UTC}.Value(uint64(1700000000000), "timestamp"))
}
