package db

import "time"

// SavedView is a named search/sort combination for the report list.
type SavedView struct {
	ID          int64
	Name        string
	SearchParam string
	OrderBy     string
	Order       string
	Limit       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JournalEntry records one update or delete issued from the console.
type JournalEntry struct {
	ID        string
	Action    string
	ReportID  string
	Result    string
	Detail    string
	CreatedAt time.Time
}

const (
	ActionUpdate = "update"
	ActionDelete = "delete"
)
