package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zkraljic/biblio/internal/model"
)

const maintenanceJoin = `
	SELECT mt.id, mt.book_id, mt.maintenance_date, mt.description, mt.status,
	       bk.title, bk.isbn
	FROM maintenance mt
	JOIN books bk ON bk.id = mt.book_id`

// CreateMaintenance opens a maintenance record for a book in pending status.
// Creation does not touch the book's availability: whoever pulled the book
// from circulation already accounted for the copy (the damaged-return path
// does this in its own transaction).
func CreateMaintenance(ctx context.Context, db *sql.DB, bookID int64, date, description string) (*model.Maintenance, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("description is required: %w", ErrInvalidInput)
	}
	if _, err := time.Parse(model.DateFormat, date); err != nil {
		return nil, fmt.Errorf("maintenance date %q: %w", date, ErrInvalidInput)
	}

	book, err := GetBook(ctx, db, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, fmt.Errorf("book %d: %w", bookID, ErrNotFound)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO maintenance (book_id, maintenance_date, description, status)
		 VALUES (?, ?, ?, 'pending')`,
		bookID, date, description,
	)
	if err != nil {
		return nil, fmt.Errorf("creating maintenance record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting maintenance id: %w", err)
	}

	return GetMaintenance(ctx, db, id)
}

// UpdateMaintenanceStatus moves a maintenance record to a new status.
// Non-empty notes are appended to the description with a timestamp, keeping
// the full audit trail in the record. A transition into completed puts one
// copy back on the shelf, but only while the book is below its total. At
// the cap the increment is silently skipped, not an error.
func UpdateMaintenanceStatus(ctx context.Context, db *sql.DB, id int64, status model.MaintenanceStatus, notes string) (*model.Maintenance, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("maintenance status %q: %w", status, ErrInvalidStatus)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var bookID int64
	var description string
	err = tx.QueryRowContext(ctx,
		`SELECT book_id, description FROM maintenance WHERE id = ?`, id,
	).Scan(&bookID, &description)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("maintenance %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up maintenance record: %w", err)
	}

	if strings.TrimSpace(notes) != "" {
		stamp := time.Now().Format("2006-01-02 15:04:05")
		description = description + "\n" + stamp + ": " + notes
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE maintenance SET status = ?, description = ? WHERE id = ?`,
		string(status), description, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating maintenance record: %w", err)
	}

	if status == model.MaintenanceCompleted {
		_, err = tx.ExecContext(ctx,
			`UPDATE books SET available_copies = available_copies + 1
			 WHERE id = ? AND available_copies < total_copies`, bookID,
		)
		if err != nil {
			return nil, fmt.Errorf("restoring book availability: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing maintenance update: %w", err)
	}

	return GetMaintenance(ctx, db, id)
}

// GetMaintenance returns a maintenance record by ID with book details.
func GetMaintenance(ctx context.Context, db *sql.DB, id int64) (*model.Maintenance, error) {
	m := &model.Maintenance{}
	err := db.QueryRowContext(ctx, maintenanceJoin+` WHERE mt.id = ?`, id).
		Scan(&m.ID, &m.BookID, &m.MaintenanceDate, &m.Description, &m.Status,
			&m.BookTitle, &m.BookISBN)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting maintenance record: %w", err)
	}
	return m, nil
}

// ListMaintenance returns all maintenance records with book details,
// actionable first: pending, then in progress, then completed, newest date
// first within each status.
func ListMaintenance(ctx context.Context, db *sql.DB) ([]model.Maintenance, error) {
	rows, err := db.QueryContext(ctx,
		maintenanceJoin+` ORDER BY mt.maintenance_date DESC, mt.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing maintenance records: %w", err)
	}
	defer rows.Close()

	records, err := scanMaintenance(rows)
	if err != nil {
		return nil, err
	}

	// The status enum carries its own sort rank; the date ordering from the
	// query is preserved within each status.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Status.Rank() < records[j].Status.Rank()
	})
	return records, nil
}

// GetBookMaintenanceHistory returns a book's maintenance records, newest
// first.
func GetBookMaintenanceHistory(ctx context.Context, db *sql.DB, bookID int64) ([]model.Maintenance, error) {
	rows, err := db.QueryContext(ctx,
		maintenanceJoin+` WHERE mt.book_id = ? ORDER BY mt.maintenance_date DESC, mt.id DESC`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting maintenance history: %w", err)
	}
	defer rows.Close()

	return scanMaintenance(rows)
}

func scanMaintenance(rows *sql.Rows) ([]model.Maintenance, error) {
	var records []model.Maintenance
	for rows.Next() {
		var m model.Maintenance
		if err := rows.Scan(&m.ID, &m.BookID, &m.MaintenanceDate, &m.Description,
			&m.Status, &m.BookTitle, &m.BookISBN); err != nil {
			return nil, fmt.Errorf("scanning maintenance record: %w", err)
		}
		records = append(records, m)
	}
	return records, rows.Err()
}
