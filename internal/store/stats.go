package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zkraljic/biblio/internal/model"
)

// Stats holds the dashboard counters.
type Stats struct {
	Books              int `json:"books"`
	AvailableCopies    int `json:"available_copies"`
	ActiveMembers      int `json:"active_members"`
	ActiveBorrowings   int `json:"active_borrowings"`
	OverdueBorrowings  int `json:"overdue_borrowings"`
	PendingMaintenance int `json:"pending_maintenance"`
}

// GetStats returns the dashboard counters.
func GetStats(ctx context.Context, db *sql.DB) (*Stats, error) {
	today := time.Now().Format(model.DateFormat)
	s := &Stats{}

	queries := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&s.Books, `SELECT COUNT(*) FROM books`, nil},
		{&s.AvailableCopies, `SELECT COALESCE(SUM(available_copies), 0) FROM books`, nil},
		{&s.ActiveMembers, `SELECT COUNT(*) FROM members WHERE status = 'active'`, nil},
		{&s.ActiveBorrowings, `SELECT COUNT(*) FROM borrowing WHERE status = 'borrowed'`, nil},
		{&s.OverdueBorrowings,
			`SELECT COUNT(*) FROM borrowing WHERE status = 'borrowed' AND due_date < ?`,
			[]any{today}},
		{&s.PendingMaintenance, `SELECT COUNT(*) FROM maintenance WHERE status = 'pending'`, nil},
	}

	for _, q := range queries {
		if err := db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("collecting stats: %w", err)
		}
	}

	return s, nil
}
