package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zkraljic/biblio/internal/model"
)

const bookColumns = `id, isbn, title, author, publisher, publication_year,
	total_copies, available_copies, cover_mime, created_at`

// CreateBook registers a new book. All copies start available.
func CreateBook(ctx context.Context, db *sql.DB, isbn, title, author, publisher string, year, totalCopies int) (*model.Book, error) {
	if err := validateBookFields(isbn, title, author, publisher, year, totalCopies); err != nil {
		return nil, err
	}

	// Check for an existing ISBN first so the caller gets a clean duplicate
	// error instead of a driver constraint failure.
	existing, err := FindBookByISBN(ctx, db, isbn)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("isbn %s: %w", isbn, ErrDuplicate)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO books (isbn, title, author, publisher, publication_year, total_copies, available_copies)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		isbn, title, author, publisher, year, totalCopies, totalCopies,
	)
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting book id: %w", err)
	}

	return GetBook(ctx, db, id)
}

// GetBook returns a book by ID with its current borrowed count.
func GetBook(ctx context.Context, db *sql.DB, id int64) (*model.Book, error) {
	b := &model.Book{}
	var coverMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+bookColumns+`,
		        (SELECT COUNT(*) FROM borrowing WHERE book_id = books.id AND status = 'borrowed')
		 FROM books WHERE id = ?`, id,
	).Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Publisher, &b.PublicationYear,
		&b.TotalCopies, &b.AvailableCopies, &coverMime, &b.CreatedAt, &b.BorrowedCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}
	b.CoverMime = coverMime.String
	return b, nil
}

// FindBookByISBN returns a book by ISBN, or nil if none exists.
func FindBookByISBN(ctx context.Context, db *sql.DB, isbn string) (*model.Book, error) {
	b := &model.Book{}
	var coverMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE isbn = ?`, isbn,
	).Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Publisher, &b.PublicationYear,
		&b.TotalCopies, &b.AvailableCopies, &coverMime, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding book by isbn: %w", err)
	}
	b.CoverMime = coverMime.String
	return b, nil
}

// ListBooks returns all books, newest first, each with its borrowed count.
func ListBooks(ctx context.Context, db *sql.DB) ([]model.Book, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+bookColumns+`,
		        (SELECT COUNT(*) FROM borrowing WHERE book_id = books.id AND status = 'borrowed')
		 FROM books ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows, true)
}

// ListAvailableBooks returns books with at least one copy on the shelf,
// ordered by title (for the borrowing form).
func ListAvailableBooks(ctx context.Context, db *sql.DB) ([]model.Book, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE available_copies > 0 ORDER BY title`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing available books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows, false)
}

// UpdateBook updates a book's metadata and copy count. Shrinking the total
// clamps the available counter so it never exceeds the new total.
func UpdateBook(ctx context.Context, db *sql.DB, id int64, title, author, publisher string, year, totalCopies int) error {
	if err := validateBookFields("-", title, author, publisher, year, totalCopies); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE books
		 SET title = ?, author = ?, publisher = ?, publication_year = ?,
		     total_copies = ?, available_copies = MIN(available_copies, ?)
		 WHERE id = ?`,
		title, author, publisher, year, totalCopies, totalCopies, id,
	)
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	return nil
}

// AdjustAvailability changes a book's available-copy counter by delta
// (positive or negative) for manual corrections. The adjustment is rejected
// if it would leave the counter outside [0, total_copies].
func AdjustAvailability(ctx context.Context, db *sql.DB, bookID int64, delta int) error {
	if delta == 0 {
		return fmt.Errorf("delta must be non-zero: %w", ErrInvalidInput)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var available, total int
	err = tx.QueryRowContext(ctx,
		`SELECT available_copies, total_copies FROM books WHERE id = ?`, bookID,
	).Scan(&available, &total)
	if err == sql.ErrNoRows {
		return fmt.Errorf("book %d: %w", bookID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking availability: %w", err)
	}

	next := available + delta
	if next < 0 || next > total {
		return fmt.Errorf("%d%+d of %d total: %w", available, delta, total, ErrAvailabilityRange)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE books SET available_copies = ? WHERE id = ?`, next, bookID,
	); err != nil {
		return fmt.Errorf("adjusting availability: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing adjustment: %w", err)
	}
	return nil
}

// SetBookCover stores a book's cover image.
func SetBookCover(ctx context.Context, db *sql.DB, id int64, cover []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE books SET cover = ?, cover_mime = ? WHERE id = ?`,
		cover, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	return nil
}

// GetBookCover returns a book's cover image data and MIME type.
func GetBookCover(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var cover []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT cover, cover_mime FROM books WHERE id = ?`, id,
	).Scan(&cover, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting book cover: %w", err)
	}
	return cover, mime.String, nil
}

func scanBooks(rows *sql.Rows, withBorrowed bool) ([]model.Book, error) {
	var books []model.Book
	for rows.Next() {
		var b model.Book
		var coverMime sql.NullString
		dest := []any{&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Publisher, &b.PublicationYear,
			&b.TotalCopies, &b.AvailableCopies, &coverMime, &b.CreatedAt}
		if withBorrowed {
			dest = append(dest, &b.BorrowedCount)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		b.CoverMime = coverMime.String
		books = append(books, b)
	}
	return books, rows.Err()
}

func validateBookFields(isbn, title, author, publisher string, year, totalCopies int) error {
	if strings.TrimSpace(isbn) == "" || strings.TrimSpace(title) == "" ||
		strings.TrimSpace(author) == "" || strings.TrimSpace(publisher) == "" {
		return fmt.Errorf("all fields are required: %w", ErrInvalidInput)
	}
	if year < 1000 || year > time.Now().Year() {
		return fmt.Errorf("publication year %d: %w", year, ErrInvalidInput)
	}
	if totalCopies < 1 {
		return fmt.Errorf("total copies %d: %w", totalCopies, ErrInvalidInput)
	}
	return nil
}
