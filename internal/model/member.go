package model

import "time"

// Member represents a registered library member. Members are never
// hard-deleted; lapsed memberships are marked inactive.
type Member struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`

	// Derived field (not always populated).
	ActiveBorrowings int `json:"active_borrowings,omitempty"`
}

// Member statuses.
const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
)

// ValidMemberStatus reports whether s is a known member status.
func ValidMemberStatus(s string) bool {
	return s == MemberStatusActive || s == MemberStatusInactive
}
