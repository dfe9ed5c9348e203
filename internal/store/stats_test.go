package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkraljic/biblio/internal/db"
	"github.com/zkraljic/biblio/internal/model"
)

func TestGetStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := createTestBook(t, database, "978-0134190440", 3)
	member := createTestMember(t, database, "ana@example.com")
	lapsed := createTestMember(t, database, "bor@example.com")
	require.NoError(t, UpdateMember(ctx, database, lapsed.ID, "Bor", "Street 2", "041", model.MemberStatusInactive))

	loan, err := CreateBorrowing(ctx, database, member.ID, book.ID, today(), daysFromNow(7))
	require.NoError(t, err)
	backdateLoan(t, database, loan.ID, daysFromNow(-1))

	_, err = CreateMaintenance(ctx, database, book.ID, today(), "loose binding")
	require.NoError(t, err)

	stats, err := GetStats(ctx, database)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Books)
	assert.Equal(t, 2, stats.AvailableCopies)
	assert.Equal(t, 1, stats.ActiveMembers)
	assert.Equal(t, 1, stats.ActiveBorrowings)
	assert.Equal(t, 1, stats.OverdueBorrowings)
	assert.Equal(t, 1, stats.PendingMaintenance)
}
