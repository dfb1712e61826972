// internal/inventory/implementation.go
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"librakeep/internal/errs"
	"librakeep/internal/journal"
	"librakeep/internal/store"
)

// service implements the Service interface.
type service struct {
	store   *store.Store
	journal *journal.Journal
}

// NewService creates a new inventory service instance.
func NewService(st *store.Store, jr *journal.Journal) Service {
	return &service{store: st, journal: jr}
}

// CreateBook adds a book with all copies on the shelf.
func (s *service) CreateBook(ctx context.Context, title, author string, totalCopies int, genre string) (*Book, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errs.Validation("title", "must be provided")
	}
	if strings.TrimSpace(author) == "" {
		return nil, errs.Validation("author", "must be provided")
	}
	if totalCopies < 0 {
		return nil, errs.Validation("total_copies", "must be zero or positive")
	}

	now := time.Now().UTC()
	book := &Book{
		ID:              uuid.New(),
		Title:           title,
		Author:          author,
		Genre:           genre,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.store.WithinTx(ctx, "inventory.create_book", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (id, title, author, genre, total_copies, available_copies, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, book.ID, book.Title, book.Author, book.Genre, book.TotalCopies, book.AvailableCopies, book.CreatedAt, book.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert book: %w", err)
		}

		return s.journal.Record(ctx, tx, "book", book.ID, "BookCreated", BookCreatedEvent{
			ID:          book.ID,
			Title:       book.Title,
			Author:      book.Author,
			Genre:       book.Genre,
			TotalCopies: book.TotalCopies,
		})
	})
	if err != nil {
		return nil, err
	}

	return book, nil
}

// UpdateBook edits a book and recomputes availability so copies currently out
// with borrowers stay accounted for. The row is locked for the duration of
// the read-modify-write.
func (s *service) UpdateBook(ctx context.Context, id uuid.UUID, title, author string, newTotalCopies int, genre string) (*Book, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errs.Validation("title", "must be provided")
	}
	if strings.TrimSpace(author) == "" {
		return nil, errs.Validation("author", "must be provided")
	}
	if newTotalCopies < 0 {
		return nil, errs.Validation("total_copies", "must be zero or positive")
	}

	var book Book
	err := s.store.WithinTx(ctx, "inventory.update_book", func(tx *sqlx.Tx) error {
		var oldTotal, oldAvailable int
		err := tx.QueryRowContext(ctx, `
			SELECT total_copies, available_copies FROM books WHERE id = $1 FOR UPDATE
		`, id).Scan(&oldTotal, &oldAvailable)
		if err != nil {
			return store.NotFound(err)
		}

		newAvailable := AdjustAvailable(oldAvailable, oldTotal, newTotalCopies)

		err = tx.GetContext(ctx, &book, `
			UPDATE books
			SET title = $1, author = $2, genre = $3, total_copies = $4, available_copies = $5, updated_at = NOW()
			WHERE id = $6
			RETURNING id, title, author, genre, total_copies, available_copies, created_at, updated_at
		`, title, author, genre, newTotalCopies, newAvailable, id)
		if err != nil {
			return fmt.Errorf("update book: %w", err)
		}

		return s.journal.Record(ctx, tx, "book", id, "BookUpdated", BookUpdatedEvent{
			ID:           id,
			NewTotal:     newTotalCopies,
			NewAvailable: newAvailable,
		})
	})
	if err != nil {
		return nil, err
	}

	return &book, nil
}

// DeleteBook removes a book. While active loans reference it the delete fails
// with errs.ErrConflict unless cascade is requested, in which case the book's
// loans and requests are removed in the same transaction.
func (s *service) DeleteBook(ctx context.Context, id uuid.UUID, cascade bool) error {
	return s.store.WithinTx(ctx, "inventory.delete_book", func(tx *sqlx.Tx) error {
		var lockedID uuid.UUID
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM books WHERE id = $1 FOR UPDATE
		`, id).Scan(&lockedID)
		if err != nil {
			return store.NotFound(err)
		}

		var activeLoans int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM loans WHERE book_id = $1 AND returned_at IS NULL
		`, id).Scan(&activeLoans)
		if err != nil {
			return fmt.Errorf("count active loans: %w", err)
		}

		if activeLoans > 0 && !cascade {
			return fmt.Errorf("%w: %d active loans reference this book", errs.ErrConflict, activeLoans)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE book_id = $1`, id); err != nil {
			return fmt.Errorf("delete loans: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM borrow_requests WHERE book_id = $1`, id); err != nil {
			return fmt.Errorf("delete requests: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}

		return s.journal.Record(ctx, tx, "book", id, "BookDeleted", BookDeletedEvent{
			ID:       id,
			Cascaded: cascade && activeLoans > 0,
		})
	})
}

const bookColumns = `id, title, author, genre, total_copies, available_copies, created_at, updated_at`

// GetBook retrieves a single book.
func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	var book Book
	err := s.store.DB.GetContext(ctx, &book, `
		SELECT `+bookColumns+` FROM books WHERE id = $1
	`, id)
	if err != nil {
		return nil, store.NotFound(err)
	}
	return &book, nil
}

// ListBooks returns every book in stable order.
func (s *service) ListBooks(ctx context.Context) ([]*Book, error) {
	var books []*Book
	err := s.store.DB.SelectContext(ctx, &books, `
		SELECT `+bookColumns+` FROM books ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Search finds books whose title, author or genre contains the keyword,
// case-insensitively. Ties keep the stable list order.
func (s *service) Search(ctx context.Context, keyword string) ([]*Book, error) {
	var books []*Book
	err := s.store.DB.SelectContext(ctx, &books, `
		SELECT `+bookColumns+`
		FROM books
		WHERE title ILIKE $1 OR author ILIKE $1 OR genre ILIKE $1
		ORDER BY created_at ASC, id ASC
	`, "%"+keyword+"%")
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}
