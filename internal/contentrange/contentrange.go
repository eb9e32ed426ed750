// Package contentrange reads pagination windows from Content-Range headers.
package contentrange

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is the pagination window reported by the backend.
type Range struct {
	Start int
	End   int
	Total int
}

// MaxOffset is the last valid zero-based offset, -1 for an empty result.
func (r Range) MaxOffset() int {
	return r.Total - 1
}

// String renders the range in header form.
func (r Range) String() string {
	return fmt.Sprintf("items %d-%d/%d", r.Start, r.End, r.Total)
}

// Parse extracts start, end and total from "start-end/total", optionally
// preceded by a unit such as "items ". It never fails: missing or malformed
// parts come back as zero.
func Parse(header string) Range {
	var r Range
	header = strings.TrimSpace(header)
	if header == "" {
		return r
	}
	if i := strings.LastIndexByte(header, ' '); i >= 0 {
		header = header[i+1:]
	}

	window, total, _ := strings.Cut(header, "/")
	r.Total = atoi(total)

	start, end, found := strings.Cut(window, "-")
	r.Start = atoi(start)
	if found {
		r.End = atoi(end)
	}
	return r
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
