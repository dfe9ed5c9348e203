package model

import "time"

// Book represents a catalog entry with a shared pool of physical copies.
// AvailableCopies counts copies currently on the shelf and always stays
// within [0, TotalCopies].
type Book struct {
	ID              int64     `json:"id"`
	ISBN            string    `json:"isbn"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Publisher       string    `json:"publisher"`
	PublicationYear int       `json:"publication_year"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CoverMime       string    `json:"cover_mime,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Derived field (not always populated).
	BorrowedCount int `json:"borrowed_count,omitempty"`
}
