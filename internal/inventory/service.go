// internal/inventory/service.go
package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the inventory store.
type Service interface {
	CreateBook(ctx context.Context, title, author string, totalCopies int, genre string) (*Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, title, author string, newTotalCopies int, genre string) (*Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID, cascade bool) error
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	ListBooks(ctx context.Context) ([]*Book, error)
	Search(ctx context.Context, keyword string) ([]*Book, error)
}
