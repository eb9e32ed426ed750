package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sloppy/scanreport-console/internal/listctl"
	"github.com/sloppy/scanreport-console/internal/rest"
)

// ListExport is the JSON form of one list window.
type ListExport struct {
	ExportedAt  time.Time         `json:"exported_at"`
	Query       QueryInfo         `json:"query"`
	ScanReports []rest.ScanReport `json:"scan_reports"`
}

// QueryInfo mirrors the list query with its pagination bounds.
type QueryInfo struct {
	SearchParam string `json:"search,omitempty"`
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
	OrderBy     string `json:"order_by"`
	Order       string `json:"order"`
	LastOffset  int    `json:"last_offset"`
	MaxOffset   int    `json:"max_offset"`
	Total       int    `json:"total"`
}

// NewQueryInfo copies q for export.
func NewQueryInfo(q listctl.Query) QueryInfo {
	return QueryInfo{
		SearchParam: q.SearchParam,
		Limit:       q.Limit,
		Offset:      q.Offset,
		OrderBy:     q.OrderBy,
		Order:       q.Order,
		LastOffset:  q.LastOffset,
		MaxOffset:   q.MaxOffset,
		Total:       q.Total(),
	}
}

// ExportListJSON writes the current window of state as indented JSON.
func ExportListJSON(state listctl.State, now time.Time, w io.Writer) error {
	items := state.Items
	if items == nil {
		items = []rest.ScanReport{}
	}
	payload := ListExport{
		ExportedAt:  now.UTC(),
		Query:       NewQueryInfo(state.Query),
		ScanReports: items,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
