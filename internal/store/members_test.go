package store

import (
	"context"
	"errors"
	"testing"

	"github.com/zkraljic/biblio/internal/db"
	"github.com/zkraljic/biblio/internal/model"
)

func TestCreateAndGetMember(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	member, err := CreateMember(ctx, database, "Ana Novak", "Main Street 1", "ana@example.com", "040123456")
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if member.Status != model.MemberStatusActive {
		t.Errorf("expected new member to be active, got %q", member.Status)
	}

	got, err := GetMember(ctx, database, member.ID)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if got == nil || got.Email != "ana@example.com" {
		t.Errorf("unexpected member: %+v", got)
	}
}

func TestCreateMemberDuplicateEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateMember(ctx, database, "Ana", "Street 1", "ana@example.com", "040123456")
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	_, err = CreateMember(ctx, database, "Other Ana", "Street 2", "ana@example.com", "041654321")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateMemberInvalidEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, email := range []string{"", "not-an-email", "a@b", "spaces in@example.com"} {
		_, err := CreateMember(ctx, database, "Ana", "Street 1", email, "040123456")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("email %q: expected ErrInvalidInput, got %v", email, err)
		}
	}
}

func TestFindMemberByEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	created, _ := CreateMember(ctx, database, "Ana", "Street 1", "ana@example.com", "040123456")

	found, err := FindMemberByEmail(ctx, database, "ana@example.com")
	if err != nil {
		t.Fatalf("FindMemberByEmail: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Errorf("expected member %d, got %+v", created.ID, found)
	}

	missing, err := FindMemberByEmail(ctx, database, "nobody@example.com")
	if err != nil {
		t.Fatalf("FindMemberByEmail: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown email, got %+v", missing)
	}
}

func TestUpdateMemberStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	member, _ := CreateMember(ctx, database, "Ana", "Street 1", "ana@example.com", "040123456")

	err := UpdateMember(ctx, database, member.ID, "Ana Novak", "New Street 5", "041000000", model.MemberStatusInactive)
	if err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}

	got, _ := GetMember(ctx, database, member.ID)
	if got.Status != model.MemberStatusInactive || got.Address != "New Street 5" {
		t.Errorf("unexpected member after update: %+v", got)
	}

	if err := UpdateMember(ctx, database, member.ID, "Ana", "Street", "040", "expelled"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
	if err := UpdateMember(ctx, database, 9999, "Ana", "Street", "040", model.MemberStatusActive); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListActiveMembers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	active, _ := CreateMember(ctx, database, "Ana", "Street 1", "ana@example.com", "040123456")
	lapsed, _ := CreateMember(ctx, database, "Bor", "Street 2", "bor@example.com", "041654321")
	UpdateMember(ctx, database, lapsed.ID, "Bor", "Street 2", "041654321", model.MemberStatusInactive)

	members, err := ListActiveMembers(ctx, database)
	if err != nil {
		t.Fatalf("ListActiveMembers: %v", err)
	}
	if len(members) != 1 || members[0].ID != active.ID {
		t.Errorf("expected only the active member, got %+v", members)
	}
}

func TestListMembersBorrowingCount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, _ := CreateBook(ctx, database, "978-1", "Title", "A", "P", 2015, 2)
	member, _ := CreateMember(ctx, database, "Ana", "Street 1", "ana@example.com", "040123456")

	if _, err := CreateBorrowing(ctx, database, member.ID, book.ID, today(), daysFromNow(7)); err != nil {
		t.Fatalf("CreateBorrowing: %v", err)
	}

	members, err := ListMembers(ctx, database)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || members[0].ActiveBorrowings != 1 {
		t.Errorf("expected 1 active borrowing, got %+v", members)
	}
}
