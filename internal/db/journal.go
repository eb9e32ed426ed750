package db

import (
	"fmt"

	"github.com/google/uuid"
)

// RecordAction appends an entry to the action journal.
func (db *DB) RecordAction(action, reportID, result, detail string) (JournalEntry, error) {
	var e JournalEntry
	err := db.QueryRow(
		`INSERT INTO action_journal (id, action, report_id, result, detail)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id, action, report_id, result, detail, created_at`,
		uuid.NewString(), action, reportID, result, detail,
	).Scan(&e.ID, &e.Action, &e.ReportID, &e.Result, &e.Detail, &e.CreatedAt)
	if err != nil {
		return JournalEntry{}, fmt.Errorf("insert journal entry: %w", err)
	}
	return e, nil
}

// ListJournal returns the newest entries first. A limit of zero or less
// returns every entry.
func (db *DB) ListJournal(limit int) ([]JournalEntry, error) {
	query := `SELECT id, action, report_id, result, detail, created_at
		FROM action_journal ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.ReportID, &e.Result, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
