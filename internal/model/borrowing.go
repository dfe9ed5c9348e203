package model

import "time"

// DateFormat is the ISO date layout used for all date-only columns.
const DateFormat = "2006-01-02"

// Borrowing represents a single loan of one copy of a book. A record is
// created as borrowed and transitions exactly once to returned; a returned
// record is immutable history.
type Borrowing struct {
	ID             int64  `json:"id"`
	MemberID       int64  `json:"member_id"`
	BookID         int64  `json:"book_id"`
	BorrowDate     string `json:"borrow_date"`
	DueDate        string `json:"due_date"`
	Status         string `json:"status"`
	ReturnDate     string `json:"return_date,omitempty"`
	ConditionNotes string `json:"condition_notes,omitempty"`

	// Joined fields (not always populated).
	BookTitle   string `json:"book_title,omitempty"`
	BookISBN    string `json:"book_isbn,omitempty"`
	MemberName  string `json:"member_name,omitempty"`
	MemberEmail string `json:"member_email,omitempty"`

	// Derived field (not always populated).
	DaysOverdue int `json:"days_overdue"`
}

// Borrowing statuses.
const (
	BorrowingStatusBorrowed = "borrowed"
	BorrowingStatusReturned = "returned"
)

// OverdueDays returns how many whole days past due a loan is at the given
// time, or 0 if the due date has not passed. Malformed dates count as 0.
func OverdueDays(dueDate string, now time.Time) int {
	due, err := time.Parse(DateFormat, dueDate)
	if err != nil {
		return 0
	}
	today, _ := time.Parse(DateFormat, now.Format(DateFormat))
	days := int(today.Sub(due).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
