package model

// MaintenanceStatus is the repair state of a maintenance record. The zero
// ordering (pending before in_progress before completed) carries the listing
// order, so actionable records surface first.
type MaintenanceStatus string

// Maintenance statuses.
const (
	MaintenancePending    MaintenanceStatus = "pending"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
)

// Valid reports whether s is a known maintenance status.
func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenancePending, MaintenanceInProgress, MaintenanceCompleted:
		return true
	}
	return false
}

// Rank returns the sort rank of the status. Unknown statuses sort last.
func (s MaintenanceStatus) Rank() int {
	switch s {
	case MaintenancePending:
		return 0
	case MaintenanceInProgress:
		return 1
	case MaintenanceCompleted:
		return 2
	}
	return 3
}

// Maintenance represents a repair record for a book pulled from circulation.
// Completing a record returns one copy to the shelf, capped at the book's
// total. Status notes accumulate in Description as an append-only trail.
type Maintenance struct {
	ID              int64             `json:"id"`
	BookID          int64             `json:"book_id"`
	MaintenanceDate string            `json:"maintenance_date"`
	Description     string            `json:"description"`
	Status          MaintenanceStatus `json:"status"`

	// Joined fields (not always populated).
	BookTitle string `json:"book_title,omitempty"`
	BookISBN  string `json:"book_isbn,omitempty"`
}
