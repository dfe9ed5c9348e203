package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkraljic/biblio/internal/db"
	"github.com/zkraljic/biblio/internal/model"
)

func TestCreateMaintenance(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 2)

	record, err := CreateMaintenance(ctx, database, book.ID, today(), "loose binding")
	require.NoError(t, err)

	assert.Equal(t, model.MaintenancePending, record.Status)
	assert.Equal(t, "loose binding", record.Description)
	assert.Equal(t, book.ID, record.BookID)
	assert.Equal(t, "The Go Programming Language", record.BookTitle)

	// Creation alone never touches the shelf count; the copy was accounted
	// for by whoever pulled the book from circulation.
	assert.Equal(t, 2, availableCopies(t, database, book.ID))
}

func TestCreateMaintenanceValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 1)

	_, err := CreateMaintenance(ctx, database, book.ID, today(), "  ")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = CreateMaintenance(ctx, database, book.ID, "tomorrow-ish", "torn pages")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = CreateMaintenance(ctx, database, 9999, today(), "torn pages")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMaintenanceStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 2)
	record, err := CreateMaintenance(ctx, database, book.ID, today(), "loose binding")
	require.NoError(t, err)

	updated, err := UpdateMaintenanceStatus(ctx, database, record.ID, model.MaintenanceInProgress, "sent to bindery")
	require.NoError(t, err)
	assert.Equal(t, model.MaintenanceInProgress, updated.Status)
	assert.Contains(t, updated.Description, "loose binding")
	assert.Contains(t, updated.Description, "sent to bindery")

	// Notes append with a timestamp; the original text stays first.
	assert.Equal(t, "loose binding", updated.Description[:len("loose binding")])
}

func TestUpdateMaintenanceInvalidStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 1)
	record, err := CreateMaintenance(ctx, database, book.ID, today(), "loose binding")
	require.NoError(t, err)

	_, err = UpdateMaintenanceStatus(ctx, database, record.ID, "repaired", "")
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = UpdateMaintenanceStatus(ctx, database, 9999, model.MaintenanceCompleted, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteMaintenanceRestoresCopy(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 2)
	member := createTestMember(t, database, "ana@example.com")

	// Pull a copy out through the damaged-return path.
	loan, err := CreateBorrowing(ctx, database, member.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)
	_, err = ProcessReturn(ctx, database, loan.ID, "damaged corner")
	require.NoError(t, err)

	records, err := GetBookMaintenanceHistory(ctx, database, book.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	// The return incremented, the pending repair holds nothing back yet.
	require.Equal(t, 2, availableCopies(t, database, book.ID))

	// At the cap the completion increment is silently skipped.
	_, err = UpdateMaintenanceStatus(ctx, database, records[0].ID, model.MaintenanceCompleted, "glued")
	require.NoError(t, err)
	assert.Equal(t, 2, availableCopies(t, database, book.ID))
}

func TestCompleteMaintenanceBelowCap(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 3)
	require.NoError(t, AdjustAvailability(ctx, database, book.ID, -1))

	record, err := CreateMaintenance(ctx, database, book.ID, today(), "worn cover")
	require.NoError(t, err)

	_, err = UpdateMaintenanceStatus(ctx, database, record.ID, model.MaintenanceCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, 3, availableCopies(t, database, book.ID))
}

func TestListMaintenanceOrdering(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 3)

	older := daysFromNow(-10)
	newer := daysFromNow(-1)

	done, err := CreateMaintenance(ctx, database, book.ID, newer, "done repair")
	require.NoError(t, err)
	_, err = UpdateMaintenanceStatus(ctx, database, done.ID, model.MaintenanceCompleted, "")
	require.NoError(t, err)

	active, err := CreateMaintenance(ctx, database, book.ID, older, "active repair")
	require.NoError(t, err)
	_, err = UpdateMaintenanceStatus(ctx, database, active.ID, model.MaintenanceInProgress, "")
	require.NoError(t, err)

	pendingOld, err := CreateMaintenance(ctx, database, book.ID, older, "pending old")
	require.NoError(t, err)
	pendingNew, err := CreateMaintenance(ctx, database, book.ID, newer, "pending new")
	require.NoError(t, err)

	records, err := ListMaintenance(ctx, database)
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Pending first (newest date first within the status), then in
	// progress, completed last.
	assert.Equal(t, pendingNew.ID, records[0].ID)
	assert.Equal(t, pendingOld.ID, records[1].ID)
	assert.Equal(t, active.ID, records[2].ID)
	assert.Equal(t, done.ID, records[3].ID)
}

func TestBookMaintenanceHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book1 := createTestBook(t, database, "978-0134190440", 1)
	book2 := createTestBook(t, database, "978-0201616224", 1)

	_, err := CreateMaintenance(ctx, database, book1.ID, daysFromNow(-5), "first repair")
	require.NoError(t, err)
	_, err = CreateMaintenance(ctx, database, book1.ID, today(), "second repair")
	require.NoError(t, err)
	_, err = CreateMaintenance(ctx, database, book2.ID, today(), "other book")
	require.NoError(t, err)

	history, err := GetBookMaintenanceHistory(ctx, database, book1.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "second repair", history[0].Description)
	assert.Equal(t, "first repair", history[1].Description)
}
