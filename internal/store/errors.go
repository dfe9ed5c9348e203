package store

import "errors"

// Business-rule errors. Handlers match these with errors.Is and turn them
// into user-facing messages; any other error from this package is a storage
// failure whose cause is logged but never shown to the caller.
var (
	// ErrNotFound covers missing and ineligible records alike: returning a
	// loan that was already returned reports the same error as returning a
	// loan that never existed.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable means the book has no copies left on the shelf.
	ErrUnavailable = errors.New("no copies available")

	// ErrMemberOverdue blocks members holding any overdue loan from
	// borrowing further, regardless of which book is overdue.
	ErrMemberOverdue = errors.New("member has overdue loans")

	// ErrInvalidDates rejects borrow dates in the future or due dates not
	// after the borrow date.
	ErrInvalidDates = errors.New("invalid borrow/due dates")

	// ErrInvalidStatus rejects unknown status values.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrDuplicate rejects a second book with the same ISBN or a second
	// member with the same email.
	ErrDuplicate = errors.New("record already exists")

	// ErrInvalidInput rejects malformed field values.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAvailabilityRange rejects an availability adjustment that would
	// push the counter outside [0, total_copies].
	ErrAvailabilityRange = errors.New("adjustment out of range")
)
