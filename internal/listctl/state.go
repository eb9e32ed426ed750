// Package listctl drives the scan report list: it binds the query state to
// backend calls and folds the responses back into that state.
package listctl

import (
	"github.com/sloppy/scanreport-console/internal/rest"
)

const (
	DefaultOrderBy = "timestamp"
	DefaultOrder   = "desc"
)

// Query is the pagination, sort and filter position of the list.
type Query struct {
	SearchParam string
	Limit       int
	Offset      int
	OrderBy     string
	Order       string
	LastOffset  int
	MaxOffset   int
}

// DefaultQuery sorts newest scans first.
func DefaultQuery(limit int) Query {
	return Query{
		Limit:     limit,
		OrderBy:   DefaultOrderBy,
		Order:     DefaultOrder,
		MaxOffset: -1,
	}
}

// Params converts the query into backend request parameters.
func (q Query) Params() rest.Params {
	return rest.Params{
		SearchParam: q.SearchParam,
		Limit:       q.Limit,
		Offset:      q.Offset,
		OrderBy:     q.OrderBy,
		Order:       q.Order,
	}
}

// SetOffset moves the visible window; negative offsets clamp to zero.
func (q *Query) SetOffset(offset int) {
	if offset < 0 {
		offset = 0
	}
	q.Offset = offset
}

func (q Query) HasPrev() bool {
	return q.Offset > 0
}

func (q Query) HasNext() bool {
	return q.LastOffset < q.MaxOffset
}

func (q Query) PrevOffset() int {
	return max(q.Offset-q.Limit, 0)
}

func (q Query) NextOffset() int {
	return q.LastOffset + 1
}

// Total is the number of items the backend reported for the query.
func (q Query) Total() int {
	return q.MaxOffset + 1
}

// State is everything the list view renders.
type State struct {
	Query    Query
	Items    []rest.ScanReport
	Selected *rest.ScanReport
}

// NewState returns an empty list with the default sort.
func NewState(limit int) *State {
	return &State{Query: DefaultQuery(limit), Items: []rest.ScanReport{}}
}

// ApplyPage folds a successful query response into s: the items are
// replaced, lastOffset becomes the range end, maxOffset the total minus one,
// and the visible offset resets to the range start.
func ApplyPage(s State, page rest.Page) State {
	items := make([]rest.ScanReport, len(page.Reports))
	copy(items, page.Reports)
	s.Items = items
	s.Query.LastOffset = page.Range.End
	s.Query.MaxOffset = page.Range.MaxOffset()
	s.Query.SetOffset(page.Range.Start)
	return s
}

// ApplyNotFound clears the list after the backend reported no matches.
func ApplyNotFound(s State) State {
	s.Items = []rest.ScanReport{}
	s.Query.LastOffset = 0
	s.Query.MaxOffset = -1
	s.Query.SetOffset(0)
	return s
}
