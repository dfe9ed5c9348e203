package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkraljic/biblio/internal/db"
	"github.com/zkraljic/biblio/internal/model"
)

func today() string {
	return time.Now().Format(model.DateFormat)
}

func daysFromNow(days int) string {
	return time.Now().AddDate(0, 0, days).Format(model.DateFormat)
}

func createTestBook(t *testing.T, database *sql.DB, isbn string, copies int) *model.Book {
	t.Helper()
	book, err := CreateBook(context.Background(), database, isbn, "The Go Programming Language",
		"Donovan & Kernighan", "Addison-Wesley", 2015, copies)
	require.NoError(t, err)
	return book
}

func createTestMember(t *testing.T, database *sql.DB, email string) *model.Member {
	t.Helper()
	member, err := CreateMember(context.Background(), database, "Ana Novak",
		"Main Street 1", email, "040123456")
	require.NoError(t, err)
	return member
}

// backdateLoan rewrites a loan's due date so it counts as overdue without
// waiting for real time to pass.
func backdateLoan(t *testing.T, database *sql.DB, borrowingID int64, due string) {
	t.Helper()
	_, err := database.Exec(`UPDATE borrowing SET due_date = ? WHERE id = ?`, due, borrowingID)
	require.NoError(t, err)
}

func availableCopies(t *testing.T, database *sql.DB, bookID int64) int {
	t.Helper()
	book, err := GetBook(context.Background(), database, bookID)
	require.NoError(t, err)
	require.NotNil(t, book)
	return book.AvailableCopies
}

func TestCreateBorrowing(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 2)
	member := createTestMember(t, database, "ana@example.com")

	borrowing, err := CreateBorrowing(ctx, database, member.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)

	assert.Equal(t, model.BorrowingStatusBorrowed, borrowing.Status)
	assert.Equal(t, book.ID, borrowing.BookID)
	assert.Equal(t, member.ID, borrowing.MemberID)
	assert.Equal(t, "The Go Programming Language", borrowing.BookTitle)
	assert.Equal(t, 1, availableCopies(t, database, book.ID))
}

func TestCreateBorrowingUnavailable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 1)
	m1 := createTestMember(t, database, "ana@example.com")
	m2 := createTestMember(t, database, "bor@example.com")

	_, err := CreateBorrowing(ctx, database, m1.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)

	// The last copy is out; the next borrow fails and writes nothing.
	_, err = CreateBorrowing(ctx, database, m2.ID, book.ID, today(), daysFromNow(7))
	require.ErrorIs(t, err, ErrUnavailable)

	assert.Equal(t, 0, availableCopies(t, database, book.ID))
	active, err := ListActiveBorrowings(ctx, database)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCreateBorrowingMemberOverdue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book1 := createTestBook(t, database, "978-0134190440", 1)
	book2 := createTestBook(t, database, "978-0201616224", 1)
	member := createTestMember(t, database, "ana@example.com")

	loan, err := CreateBorrowing(ctx, database, member.ID, book1.ID, today(), daysFromNow(7))
	require.NoError(t, err)
	backdateLoan(t, database, loan.ID, daysFromNow(-3))

	// Any overdue loan blocks the member, even for a different book.
	_, err = CreateBorrowing(ctx, database, member.ID, book2.ID, today(), daysFromNow(7))
	require.ErrorIs(t, err, ErrMemberOverdue)
	assert.Equal(t, 1, availableCopies(t, database, book2.ID))
}

func TestCreateBorrowingDateValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 1)
	member := createTestMember(t, database, "ana@example.com")

	tests := []struct {
		name       string
		borrowDate string
		dueDate    string
	}{
		{"future borrow date", daysFromNow(1), daysFromNow(8)},
		{"due before borrow", today(), daysFromNow(-1)},
		{"due equals borrow", today(), today()},
		{"malformed borrow date", "30.08.2026", daysFromNow(7)},
		{"malformed due date", today(), "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateBorrowing(ctx, database, member.ID, book.ID, tt.borrowDate, tt.dueDate)
			require.ErrorIs(t, err, ErrInvalidDates)
		})
	}

	assert.Equal(t, 1, availableCopies(t, database, book.ID))
}

func TestCreateBorrowingUnknownBookOrMember(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 1)
	member := createTestMember(t, database, "ana@example.com")

	_, err := CreateBorrowing(ctx, database, member.ID, 9999, today(), daysFromNow(7))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = CreateBorrowing(ctx, database, 9999, book.ID, today(), daysFromNow(7))
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, availableCopies(t, database, book.ID))
}

func TestProcessReturn(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 1)
	member := createTestMember(t, database, "ana@example.com")

	loan, err := CreateBorrowing(ctx, database, member.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)
	require.Equal(t, 0, availableCopies(t, database, book.ID))

	returned, err := ProcessReturn(ctx, database, loan.ID, "good condition")
	require.NoError(t, err)

	assert.Equal(t, model.BorrowingStatusReturned, returned.Status)
	assert.Equal(t, today(), returned.ReturnDate)
	assert.Equal(t, "good condition", returned.ConditionNotes)
	assert.Equal(t, 1, availableCopies(t, database, book.ID))

	// No maintenance record for an undamaged return.
	records, err := GetBookMaintenanceHistory(ctx, database, book.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProcessReturnTwiceFails(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 1)
	member := createTestMember(t, database, "ana@example.com")

	loan, err := CreateBorrowing(ctx, database, member.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)

	_, err = ProcessReturn(ctx, database, loan.ID, "")
	require.NoError(t, err)

	// A second return reports the same error as an unknown id, and the
	// counter stays put.
	_, err = ProcessReturn(ctx, database, loan.ID, "")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = ProcessReturn(ctx, database, 9999, "")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, availableCopies(t, database, book.ID))
}

func TestProcessReturnDamageOpensMaintenance(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 1)
	member := createTestMember(t, database, "ana@example.com")

	loan, err := CreateBorrowing(ctx, database, member.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)

	// Substring match is case-insensitive.
	_, err = ProcessReturn(ctx, database, loan.ID, "Water DAMAGE on back cover")
	require.NoError(t, err)

	records, err := GetBookMaintenanceHistory(ctx, database, book.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.MaintenancePending, records[0].Status)
	assert.Equal(t, "Water DAMAGE on back cover", records[0].Description)
	assert.Equal(t, today(), records[0].MaintenanceDate)
}

func TestListActiveBorrowingsOrderAndOverdue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 3)
	m1 := createTestMember(t, database, "ana@example.com")
	m2 := createTestMember(t, database, "bor@example.com")
	m3 := createTestMember(t, database, "cvetka@example.com")

	l1, err := CreateBorrowing(ctx, database, m1.ID, book.ID, today(), daysFromNow(14))
	require.NoError(t, err)
	l2, err := CreateBorrowing(ctx, database, m2.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)
	l3, err := CreateBorrowing(ctx, database, m3.ID, book.ID, today(), daysFromNow(2))
	require.NoError(t, err)
	backdateLoan(t, database, l3.ID, daysFromNow(-5))

	active, err := ListActiveBorrowings(ctx, database)
	require.NoError(t, err)
	require.Len(t, active, 3)

	// Most overdue first, then by due date ascending.
	assert.Equal(t, l3.ID, active[0].ID)
	assert.Equal(t, l2.ID, active[1].ID)
	assert.Equal(t, l1.ID, active[2].ID)

	assert.Equal(t, 5, active[0].DaysOverdue)
	assert.Equal(t, 0, active[1].DaysOverdue)
	assert.Equal(t, 0, active[2].DaysOverdue)
}

func TestSearchActiveBorrowings(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book1 := createTestBook(t, database, "978-0134190440", 1)
	book2, err := CreateBook(ctx, database, "978-0201616224", "The Pragmatic Programmer",
		"Hunt & Thomas", "Addison-Wesley", 1999, 1)
	require.NoError(t, err)
	m1 := createTestMember(t, database, "ana@example.com")
	m2, err := CreateMember(ctx, database, "Boris Kovac", "Side Street 2", "boris@example.com", "041765432")
	require.NoError(t, err)

	_, err = CreateBorrowing(ctx, database, m1.ID, book1.ID, today(), daysFromNow(7))
	require.NoError(t, err)
	_, err = CreateBorrowing(ctx, database, m2.ID, book2.ID, today(), daysFromNow(7))
	require.NoError(t, err)

	tests := []struct {
		query string
		want  int
	}{
		{"pragmatic", 1},   // book title, case-insensitive
		{"0134190440", 1},  // ISBN
		{"BORIS", 1},       // member name
		{"example.com", 2}, // member email, matches both
		{"zz-no-match", 0},
		{"%", 0}, // LIKE wildcards are literals in queries
	}

	for _, tt := range tests {
		results, err := SearchActiveBorrowings(ctx, database, tt.query)
		require.NoError(t, err)
		assert.Len(t, results, tt.want, "query %q", tt.query)
	}
}

func TestSearchExcludesReturned(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 1)
	member := createTestMember(t, database, "ana@example.com")

	loan, err := CreateBorrowing(ctx, database, member.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)
	_, err = ProcessReturn(ctx, database, loan.ID, "")
	require.NoError(t, err)

	results, err := SearchActiveBorrowings(ctx, database, "ana")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReturnHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 2)
	member := createTestMember(t, database, "ana@example.com")

	l1, err := CreateBorrowing(ctx, database, member.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)
	backdateLoan(t, database, l1.ID, daysFromNow(-4))
	_, err = ProcessReturn(ctx, database, l1.ID, "")
	require.NoError(t, err)

	history, err := ListReturnHistory(ctx, database)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.BorrowingStatusReturned, history[0].Status)
	assert.Equal(t, 4, history[0].DaysOverdue)
}

// TestBorrowReturnMaintenanceLifecycle walks the full copy-pool lifecycle:
// two members drain the pool, a third bounces, a damaged return opens
// maintenance, and completing the repair restores the shelf count.
func TestBorrowReturnMaintenanceLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 2)
	m1 := createTestMember(t, database, "ana@example.com")
	m2 := createTestMember(t, database, "bor@example.com")
	m3 := createTestMember(t, database, "cvetka@example.com")

	l1, err := CreateBorrowing(ctx, database, m1.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)
	require.Equal(t, 1, availableCopies(t, database, book.ID))

	_, err = CreateBorrowing(ctx, database, m2.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)
	require.Equal(t, 0, availableCopies(t, database, book.ID))

	_, err = CreateBorrowing(ctx, database, m3.ID, book.ID, today(), daysFromNow(7))
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, 0, availableCopies(t, database, book.ID))

	_, err = ProcessReturn(ctx, database, l1.ID, "minor damage on spine")
	require.NoError(t, err)
	require.Equal(t, 1, availableCopies(t, database, book.ID))

	records, err := GetBookMaintenanceHistory(ctx, database, book.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, model.MaintenancePending, records[0].Status)
	require.Equal(t, "minor damage on spine", records[0].Description)

	_, err = UpdateMaintenanceStatus(ctx, database, records[0].ID, model.MaintenanceCompleted, "")
	require.NoError(t, err)
	require.Equal(t, 2, availableCopies(t, database, book.ID))
}

// TestConcurrentBorrowLastCopy races two borrows of the last copy from
// separate goroutines: exactly one commits, the other observes Unavailable.
func TestConcurrentBorrowLastCopy(t *testing.T) {
	// A file-backed database so both goroutines share real SQLite state.
	database, err := db.Open(filepath.Join(t.TempDir(), "test.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.EnsureSchema(database))

	ctx := context.Background()
	book := createTestBook(t, database, "978-0134190440", 1)
	m1 := createTestMember(t, database, "ana@example.com")
	m2 := createTestMember(t, database, "bor@example.com")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, memberID := range []int64{m1.ID, m2.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = CreateBorrowing(ctx, database, memberID, book.ID, today(), daysFromNow(7))
		}()
	}
	wg.Wait()

	var succeeded, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrUnavailable):
			unavailable++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, unavailable)
	assert.Equal(t, 0, availableCopies(t, database, book.ID))
}
