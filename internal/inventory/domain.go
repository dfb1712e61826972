// internal/inventory/domain.go
package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Book is a title in the catalog together with its copy inventory.
// available_copies always equals total_copies minus the copies currently out
// with borrowers; the circulation engine maintains that invariant.
type Book struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Author          string    `db:"author" json:"author"`
	Genre           string    `db:"genre" json:"genre"`
	TotalCopies     int       `db:"total_copies" json:"total_copies"`
	AvailableCopies int       `db:"available_copies" json:"available_copies"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// AdjustAvailable recomputes availability after total_copies changes from
// oldTotal to newTotal. The count of copies currently out with borrowers is
// preserved, so editing the inventory never silently "returns" a copy. The
// result is clamped to [0, newTotal].
func AdjustAvailable(oldAvailable, oldTotal, newTotal int) int {
	adjusted := oldAvailable + (newTotal - oldTotal)
	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > newTotal {
		adjusted = newTotal
	}
	return adjusted
}

// BookCreatedEvent is journaled when a book is added.
type BookCreatedEvent struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Genre       string    `json:"genre"`
	TotalCopies int       `json:"total_copies"`
}

// BookUpdatedEvent is journaled when a book's fields or copy counts change.
type BookUpdatedEvent struct {
	ID           uuid.UUID `json:"id"`
	NewTotal     int       `json:"new_total"`
	NewAvailable int       `json:"new_available"`
}

// BookDeletedEvent is journaled when a book is removed.
type BookDeletedEvent struct {
	ID       uuid.UUID `json:"id"`
	Cascaded bool      `json:"cascaded"`
}
