package db

import (
	"database/sql"
	"fmt"
)

const savedViewColumns = `id, name, search_param, order_by, order_dir, page_limit, created_at, updated_at`

func scanSavedView(row interface{ Scan(...any) error }) (SavedView, error) {
	var v SavedView
	err := row.Scan(&v.ID, &v.Name, &v.SearchParam, &v.OrderBy, &v.Order, &v.Limit, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// CreateSavedView inserts a new saved view.
func (db *DB) CreateSavedView(v SavedView) (SavedView, error) {
	out, err := scanSavedView(db.QueryRow(
		`INSERT INTO saved_view (name, search_param, order_by, order_dir, page_limit)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING `+savedViewColumns,
		v.Name, v.SearchParam, v.OrderBy, v.Order, v.Limit,
	))
	if err != nil {
		return SavedView{}, fmt.Errorf("insert saved view: %w", err)
	}
	return out, nil
}

// ListSavedViews returns all saved views ordered by name.
func (db *DB) ListSavedViews() ([]SavedView, error) {
	rows, err := db.Query(`SELECT ` + savedViewColumns + ` FROM saved_view ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list saved views: %w", err)
	}
	defer rows.Close()

	var views []SavedView
	for rows.Next() {
		v, err := scanSavedView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saved view: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// GetSavedView returns a saved view by ID.
func (db *DB) GetSavedView(id int64) (SavedView, bool, error) {
	v, err := scanSavedView(db.QueryRow(`SELECT `+savedViewColumns+` FROM saved_view WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return SavedView{}, false, nil
		}
		return SavedView{}, false, fmt.Errorf("get saved view: %w", err)
	}
	return v, true, nil
}

// DeleteSavedView removes a saved view by ID.
func (db *DB) DeleteSavedView(id int64) error {
	res, err := db.Exec(`DELETE FROM saved_view WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete saved view: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
