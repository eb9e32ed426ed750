package contentrange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   Range
	}{
		{"plain", "0-9/42", Range{Start: 0, End: 9, Total: 42}},
		{"with unit", "items 10-19/42", Range{Start: 10, End: 19, Total: 42}},
		{"spaces", "  20-29/30 ", Range{Start: 20, End: 29, Total: 30}},
		{"empty", "", Range{}},
		{"garbage", "not a range", Range{}},
		{"unknown total", "0-9/*", Range{Start: 0, End: 9, Total: 0}},
		{"missing end", "5/10", Range{Start: 5, End: 0, Total: 10}},
		{"missing total", "0-9", Range{Start: 0, End: 9, Total: 0}},
		{"non numeric", "a-b/c", Range{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.header))
		})
	}
}

func TestMaxOffset(t *testing.T) {
	assert.Equal(t, 41, Parse("0-9/42").MaxOffset())
	assert.Equal(t, -1, Parse("").MaxOffset())
}

func TestString(t *testing.T) {
	assert.Equal(t, "items 0-9/42", Range{Start: 0, End: 9, Total: 42}.String())
}
