package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/zkraljic/biblio/internal/model"
)

var emailPattern = regexp.MustCompile(`^[\w-]+(\.[\w-]+)*@([\w-]+\.)+[a-zA-Z]{2,7}$`)

const memberColumns = `id, name, address, email, phone, status, registered_at`

// CreateMember registers a new library member with active status.
func CreateMember(ctx context.Context, db *sql.DB, name, address, email, phone string) (*model.Member, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(address) == "" ||
		strings.TrimSpace(email) == "" || strings.TrimSpace(phone) == "" {
		return nil, fmt.Errorf("all fields are required: %w", ErrInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("email %q: %w", email, ErrInvalidInput)
	}

	existing, err := FindMemberByEmail(ctx, db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s: %w", email, ErrDuplicate)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO members (name, address, email, phone) VALUES (?, ?, ?, ?)`,
		name, address, email, phone,
	)
	if err != nil {
		return nil, fmt.Errorf("creating member: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting member id: %w", err)
	}

	return GetMember(ctx, db, id)
}

// GetMember returns a member by ID with their active borrowing count.
func GetMember(ctx context.Context, db *sql.DB, id int64) (*model.Member, error) {
	m := &model.Member{}
	err := db.QueryRowContext(ctx,
		`SELECT `+memberColumns+`,
		        (SELECT COUNT(*) FROM borrowing WHERE member_id = members.id AND status = 'borrowed')
		 FROM members WHERE id = ?`, id,
	).Scan(&m.ID, &m.Name, &m.Address, &m.Email, &m.Phone, &m.Status, &m.RegisteredAt, &m.ActiveBorrowings)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting member: %w", err)
	}
	return m, nil
}

// FindMemberByEmail returns a member by email, or nil if none exists.
func FindMemberByEmail(ctx context.Context, db *sql.DB, email string) (*model.Member, error) {
	m := &model.Member{}
	err := db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE email = ?`, email,
	).Scan(&m.ID, &m.Name, &m.Address, &m.Email, &m.Phone, &m.Status, &m.RegisteredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding member by email: %w", err)
	}
	return m, nil
}

// ListMembers returns all members, newest first, each with their active
// borrowing count.
func ListMembers(ctx context.Context, db *sql.DB) ([]model.Member, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+memberColumns+`,
		        (SELECT COUNT(*) FROM borrowing WHERE member_id = members.id AND status = 'borrowed')
		 FROM members ORDER BY registered_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Address, &m.Email, &m.Phone,
			&m.Status, &m.RegisteredAt, &m.ActiveBorrowings); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListActiveMembers returns active members ordered by name (for the
// borrowing form).
func ListActiveMembers(ctx context.Context, db *sql.DB) ([]model.Member, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE status = 'active' ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing active members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Address, &m.Email, &m.Phone,
			&m.Status, &m.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpdateMember updates a member's contact details and status. Members are
// never deleted; lapsed memberships are set inactive here.
func UpdateMember(ctx context.Context, db *sql.DB, id int64, name, address, phone, status string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(address) == "" || strings.TrimSpace(phone) == "" {
		return fmt.Errorf("all fields are required: %w", ErrInvalidInput)
	}
	if !model.ValidMemberStatus(status) {
		return fmt.Errorf("member status %q: %w", status, ErrInvalidStatus)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE members SET name = ?, address = ?, phone = ?, status = ? WHERE id = ?`,
		name, address, phone, status, id,
	)
	if err != nil {
		return fmt.Errorf("updating member: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("member %d: %w", id, ErrNotFound)
	}
	return nil
}
