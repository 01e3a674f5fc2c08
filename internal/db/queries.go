package db

import (
	"database/sql"

	"github.com/hpungsan/diary/internal/errors"
	"github.com/hpungsan/diary/internal/record"
)

const selectEntries = `SELECT rowid, title, text, mood, symptoms, date FROM entries`

// Insert appends a row and returns the rowid the engine assigned to it.
func Insert(db *sql.DB, r record.Record) (int64, error) {
	query := `
		INSERT INTO entries (title, text, mood, symptoms, date)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query, r.Title, r.Text, r.Mood, r.Symptoms, r.Date)
	if err != nil {
		return 0, errors.NewStorageUnavailable("insert", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.NewStorageUnavailable("insert", err)
	}

	return id, nil
}

// Delete removes the row with the given rowid and returns the number of
// rows removed. A missing rowid is not an error.
func Delete(db *sql.DB, id int64) (int64, error) {
	result, err := db.Exec(`DELETE FROM entries WHERE rowid = ?`, id)
	if err != nil {
		return 0, errors.NewStorageUnavailable("delete", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewStorageUnavailable("delete", err)
	}

	return n, nil
}

// List returns every row in physical order.
func List(db *sql.DB) ([]record.Record, error) {
	rows, err := db.Query(selectEntries)
	if err != nil {
		return nil, errors.NewStorageUnavailable("list", err)
	}
	return scanRecords(rows, "list")
}

// ListBetween returns rows whose date lies in [start, end], compared as text.
func ListBetween(db *sql.DB, start, end string) ([]record.Record, error) {
	rows, err := db.Query(selectEntries+` WHERE date >= ? AND date <= ?`, start, end)
	if err != nil {
		return nil, errors.NewStorageUnavailable("list between", err)
	}
	return scanRecords(rows, "list between")
}

// scanRecords drains rows into records and closes rows.
func scanRecords(rows *sql.Rows, op string) ([]record.Record, error) {
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.NewStorageUnavailable(op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageUnavailable(op, err)
	}

	return out, nil
}

// scanRecord scans a single row into a Record.
// Columns carry no NOT NULL constraint, so NULLs map to zero values.
func scanRecord(rows *sql.Rows) (record.Record, error) {
	var (
		r        record.Record
		title    sql.NullString
		text     sql.NullString
		mood     sql.NullInt64
		symptoms sql.NullString
		date     sql.NullString
	)

	if err := rows.Scan(&r.ID, &title, &text, &mood, &symptoms, &date); err != nil {
		return record.Record{}, err
	}

	r.Title = title.String
	r.Text = text.String
	r.Mood = int(mood.Int64)
	r.Symptoms = symptoms.String
	r.Date = date.String

	return r, nil
}
