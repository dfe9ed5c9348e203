package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zkraljic/biblio/internal/model"
)

const borrowingJoin = `
	SELECT b.id, b.member_id, b.book_id, b.borrow_date, b.due_date,
	       b.status, b.return_date, b.condition_notes,
	       bk.title, bk.isbn, m.name, m.email
	FROM borrowing b
	JOIN books bk ON bk.id = b.book_id
	JOIN members m ON m.id = b.member_id`

// CreateBorrowing lends one copy of a book to a member. The availability
// check, the overdue check, the ledger insert, and the counter decrement all
// happen in one transaction: either the loan exists and one copy left the
// shelf, or nothing changed.
func CreateBorrowing(ctx context.Context, db *sql.DB, memberID, bookID int64, borrowDate, dueDate string) (*model.Borrowing, error) {
	// Date validation depends only on input, so it runs before the
	// transaction.
	today := time.Now().Format(model.DateFormat)
	bd, err := time.Parse(model.DateFormat, borrowDate)
	if err != nil {
		return nil, fmt.Errorf("borrow date %q: %w", borrowDate, ErrInvalidDates)
	}
	dd, err := time.Parse(model.DateFormat, dueDate)
	if err != nil {
		return nil, fmt.Errorf("due date %q: %w", dueDate, ErrInvalidDates)
	}
	if borrowDate > today {
		return nil, fmt.Errorf("borrow date in the future: %w", ErrInvalidDates)
	}
	if !dd.After(bd) {
		return nil, fmt.Errorf("due date must be after borrow date: %w", ErrInvalidDates)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Check the book exists and has a copy on the shelf.
	var available int
	err = tx.QueryRowContext(ctx,
		`SELECT available_copies FROM books WHERE id = ?`, bookID,
	).Scan(&available)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book %d: %w", bookID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("checking book availability: %w", err)
	}
	if available <= 0 {
		return nil, fmt.Errorf("book %d: %w", bookID, ErrUnavailable)
	}

	// Check the member exists and holds no overdue loans. Any overdue book
	// blocks further borrowing, not just the one being requested.
	var overdue int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM borrowing
		 WHERE member_id = ? AND status = 'borrowed' AND due_date < ?`,
		memberID, today,
	).Scan(&overdue)
	if err != nil {
		return nil, fmt.Errorf("checking overdue loans: %w", err)
	}
	if overdue > 0 {
		return nil, fmt.Errorf("member %d: %w", memberID, ErrMemberOverdue)
	}

	var memberExists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE id = ?`, memberID,
	).Scan(&memberExists)
	if err != nil {
		return nil, fmt.Errorf("checking member: %w", err)
	}
	if memberExists == 0 {
		return nil, fmt.Errorf("member %d: %w", memberID, ErrNotFound)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO borrowing (member_id, book_id, borrow_date, due_date, status)
		 VALUES (?, ?, ?, ?, 'borrowed')`,
		memberID, bookID, borrowDate, dueDate,
	)
	if err != nil {
		return nil, fmt.Errorf("recording borrowing: %w", err)
	}

	// The guard on the decrement re-checks availability at write time, so
	// two racing borrows of the last copy cannot both commit.
	decr, err := tx.ExecContext(ctx,
		`UPDATE books SET available_copies = available_copies - 1
		 WHERE id = ? AND available_copies > 0`, bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating book availability: %w", err)
	}
	if n, err := decr.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("book %d: %w", bookID, ErrUnavailable)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing borrowing: %w", err)
	}

	borrowingID, _ := result.LastInsertId()
	return GetBorrowing(ctx, db, borrowingID)
}

// ProcessReturn closes an active loan: the record flips to returned, one
// copy goes back on the shelf, and condition notes mentioning damage open a
// pending maintenance record. All of it happens in one transaction, so a
// damaged book never shows as available without its maintenance record.
func ProcessReturn(ctx context.Context, db *sql.DB, borrowingID int64, conditionNotes string) (*model.Borrowing, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// An already-returned loan and an unknown id are indistinguishable here:
	// both mean there is nothing to return.
	var bookID int64
	err = tx.QueryRowContext(ctx,
		`SELECT book_id FROM borrowing WHERE id = ? AND status = 'borrowed'`,
		borrowingID,
	).Scan(&bookID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("borrowing %d: %w", borrowingID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up borrowing: %w", err)
	}

	today := time.Now().Format(model.DateFormat)
	var notes any
	if conditionNotes != "" {
		notes = conditionNotes
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE borrowing SET status = 'returned', return_date = ?, condition_notes = ?
		 WHERE id = ?`,
		today, notes, borrowingID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating borrowing: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE books SET available_copies = available_copies + 1 WHERE id = ?`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating book availability: %w", err)
	}

	if strings.Contains(strings.ToLower(conditionNotes), "damage") {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO maintenance (book_id, maintenance_date, description, status)
			 VALUES (?, ?, ?, 'pending')`,
			bookID, today, conditionNotes,
		)
		if err != nil {
			return nil, fmt.Errorf("creating maintenance record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing return: %w", err)
	}

	return GetBorrowing(ctx, db, borrowingID)
}

// GetBorrowing returns a borrowing by ID with book and member details.
func GetBorrowing(ctx context.Context, db *sql.DB, id int64) (*model.Borrowing, error) {
	row := db.QueryRowContext(ctx, borrowingJoin+` WHERE b.id = ?`, id)

	b, err := scanBorrowing(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting borrowing: %w", err)
	}
	b.DaysOverdue = activeOverdueDays(b)
	return b, nil
}

// ListActiveBorrowings returns all open loans with book and member details,
// soonest due first, each annotated with how many days overdue it is.
func ListActiveBorrowings(ctx context.Context, db *sql.DB) ([]model.Borrowing, error) {
	rows, err := db.QueryContext(ctx,
		borrowingJoin+` WHERE b.status = 'borrowed' ORDER BY b.due_date ASC, b.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing active borrowings: %w", err)
	}
	defer rows.Close()

	return scanActiveBorrowings(rows)
}

// SearchActiveBorrowings filters open loans by a case-insensitive substring
// match against book ISBN, book title, member name, or member email.
func SearchActiveBorrowings(ctx context.Context, db *sql.DB, query string) ([]model.Borrowing, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := db.QueryContext(ctx,
		borrowingJoin+`
		 WHERE b.status = 'borrowed'
		   AND (bk.isbn LIKE ? ESCAPE '\' OR bk.title LIKE ? ESCAPE '\'
		        OR m.name LIKE ? ESCAPE '\' OR m.email LIKE ? ESCAPE '\')
		 ORDER BY b.due_date ASC, b.id ASC`,
		pattern, pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("searching active borrowings: %w", err)
	}
	defer rows.Close()

	return scanActiveBorrowings(rows)
}

// ListBorrowingsForBook returns a book's full borrowing history, newest
// first.
func ListBorrowingsForBook(ctx context.Context, db *sql.DB, bookID int64) ([]model.Borrowing, error) {
	rows, err := db.QueryContext(ctx,
		borrowingJoin+` WHERE b.book_id = ? ORDER BY b.borrow_date DESC, b.id DESC`, bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing borrowings for book: %w", err)
	}
	defer rows.Close()

	return scanBorrowings(rows)
}

// ListBorrowingsForMember returns a member's full borrowing history, newest
// first.
func ListBorrowingsForMember(ctx context.Context, db *sql.DB, memberID int64) ([]model.Borrowing, error) {
	rows, err := db.QueryContext(ctx,
		borrowingJoin+` WHERE b.member_id = ? ORDER BY b.borrow_date DESC, b.id DESC`, memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing borrowings for member: %w", err)
	}
	defer rows.Close()

	return scanBorrowings(rows)
}

// ListReturnHistory returns the most recent returns, newest first, each
// annotated with how many days late the book came back.
func ListReturnHistory(ctx context.Context, db *sql.DB) ([]model.Borrowing, error) {
	rows, err := db.QueryContext(ctx,
		borrowingJoin+` WHERE b.status = 'returned'
		 ORDER BY b.return_date DESC, b.id DESC LIMIT 100`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing return history: %w", err)
	}
	defer rows.Close()

	borrowings, err := scanBorrowings(rows)
	if err != nil {
		return nil, err
	}
	for i := range borrowings {
		b := &borrowings[i]
		if b.ReturnDate > b.DueDate {
			if ret, err := time.Parse(model.DateFormat, b.ReturnDate); err == nil {
				b.DaysOverdue = model.OverdueDays(b.DueDate, ret)
			}
		}
	}
	return borrowings, nil
}

func scanBorrowing(scan func(...any) error) (*model.Borrowing, error) {
	b := &model.Borrowing{}
	var returnDate, notes sql.NullString
	err := scan(&b.ID, &b.MemberID, &b.BookID, &b.BorrowDate, &b.DueDate,
		&b.Status, &returnDate, &notes,
		&b.BookTitle, &b.BookISBN, &b.MemberName, &b.MemberEmail)
	if err != nil {
		return nil, err
	}
	b.ReturnDate = returnDate.String
	b.ConditionNotes = notes.String
	return b, nil
}

func scanBorrowings(rows *sql.Rows) ([]model.Borrowing, error) {
	var borrowings []model.Borrowing
	for rows.Next() {
		b, err := scanBorrowing(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning borrowing: %w", err)
		}
		borrowings = append(borrowings, *b)
	}
	return borrowings, rows.Err()
}

func scanActiveBorrowings(rows *sql.Rows) ([]model.Borrowing, error) {
	borrowings, err := scanBorrowings(rows)
	if err != nil {
		return nil, err
	}
	for i := range borrowings {
		borrowings[i].DaysOverdue = activeOverdueDays(&borrowings[i])
	}
	return borrowings, nil
}

func activeOverdueDays(b *model.Borrowing) int {
	if b.Status != model.BorrowingStatusBorrowed {
		return 0
	}
	return model.OverdueDays(b.DueDate, time.Now())
}

// escapeLike escapes LIKE wildcards in user-supplied search terms.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
