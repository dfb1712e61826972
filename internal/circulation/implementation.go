// internal/circulation/implementation.go
package circulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"librakeep/internal/errs"
	"librakeep/internal/journal"
	"librakeep/internal/store"
)

// service implements the Service interface. Composite operations lock the
// request or loan row first and the book row last, in every code path, so
// concurrent mutations on the same book serialize without deadlocking.
type service struct {
	store          *store.Store
	journal        *journal.Journal
	notifier       Notifier
	maxActiveLoans int

	loansIssued       metric.Int64Counter
	loansReturned     metric.Int64Counter
	requestsApproved  metric.Int64Counter
	requestsRejected  metric.Int64Counter
	approvalConflicts metric.Int64Counter
}

// NewService creates the consistency engine. notifier may be nil.
// maxActiveLoans caps how many books a student may have out at once;
// zero disables the cap.
func NewService(st *store.Store, jr *journal.Journal, notifier Notifier, maxActiveLoans int) Service {
	meter := otel.Meter("librakeep/circulation")
	loansIssued, _ := meter.Int64Counter("circulation.loans_issued")
	loansReturned, _ := meter.Int64Counter("circulation.loans_returned")
	requestsApproved, _ := meter.Int64Counter("circulation.requests_approved")
	requestsRejected, _ := meter.Int64Counter("circulation.requests_rejected")
	approvalConflicts, _ := meter.Int64Counter("circulation.approval_conflicts")

	return &service{
		store:             st,
		journal:           jr,
		notifier:          notifier,
		maxActiveLoans:    maxActiveLoans,
		loansIssued:       loansIssued,
		loansReturned:     loansReturned,
		requestsApproved:  requestsApproved,
		requestsRejected:  requestsRejected,
		approvalConflicts: approvalConflicts,
	}
}

// CreateRequest records a student's intent to borrow. It succeeds even when
// the book is out of stock; availability is checked at approval time.
func (s *service) CreateRequest(ctx context.Context, studentID, bookID uuid.UUID) (*BorrowRequest, error) {
	request := &BorrowRequest{
		ID:          uuid.New(),
		StudentID:   studentID,
		BookID:      bookID,
		Status:      RequestPending,
		RequestedAt: time.Now().UTC(),
	}

	err := s.store.WithinTx(ctx, "circulation.create_request", func(tx *sqlx.Tx) error {
		var bookExists, studentExists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM books WHERE id = $1),
			       EXISTS (SELECT 1 FROM users WHERE id = $2)
		`, bookID, studentID).Scan(&bookExists, &studentExists)
		if err != nil {
			return fmt.Errorf("check references: %w", err)
		}
		if !bookExists || !studentExists {
			return errs.ErrNotFound
		}

		if err := s.checkLoanLimit(ctx, tx, studentID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO borrow_requests (id, student_id, book_id, status, requested_at)
			VALUES ($1, $2, $3, $4, $5)
		`, request.ID, request.StudentID, request.BookID, request.Status, request.RequestedAt)
		if err != nil {
			if store.IsUniqueViolation(err, "idx_requests_one_pending") {
				return errs.ErrDuplicateRequest
			}
			return fmt.Errorf("insert request: %w", err)
		}

		return s.journal.Record(ctx, tx, "request", request.ID, "RequestCreated", RequestCreatedEvent{
			RequestID: request.ID,
			StudentID: studentID,
			BookID:    bookID,
		})
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// Approve turns a pending request into a loan. Verifying the request, checking
// stock, marking the request approved, inserting the loan and decrementing the
// book's availability are all visible together or not at all. When stock is
// exhausted the request stays pending so it can be retried or rejected.
func (s *service) Approve(ctx context.Context, requestID uuid.UUID) (*Loan, error) {
	var (
		loan    *Loan
		student uuid.UUID
	)

	err := s.store.WithinTx(ctx, "circulation.approve", func(tx *sqlx.Tx) error {
		var req BorrowRequest
		err := tx.QueryRowContext(ctx, `
			SELECT id, student_id, book_id, status
			FROM borrow_requests
			WHERE id = $1
			FOR UPDATE
		`, requestID).Scan(&req.ID, &req.StudentID, &req.BookID, &req.Status)
		if err != nil {
			return store.NotFound(err)
		}
		if req.Status != RequestPending {
			return fmt.Errorf("%w: request is already %s", errs.ErrInvalidTransition, req.Status)
		}
		student = req.StudentID

		available, err := s.lockBook(ctx, tx, req.BookID)
		if err != nil {
			return err
		}
		if available < 1 {
			return errs.ErrOutOfStock
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE borrow_requests SET status = $1 WHERE id = $2
		`, RequestApproved, req.ID); err != nil {
			return fmt.Errorf("approve request: %w", err)
		}

		now := time.Now().UTC()
		loan, err = s.insertLoan(ctx, tx, req.StudentID, req.BookID, now, DueDateFrom(now))
		if err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, "request", req.ID, "RequestApproved", RequestApprovedEvent{
			RequestID: req.ID,
			LoanID:    loan.ID,
		})
	})
	if err != nil {
		if errors.Is(err, errs.ErrOutOfStock) {
			s.approvalConflicts.Add(ctx, 1)
		}
		return nil, err
	}

	s.requestsApproved.Add(ctx, 1)
	s.loansIssued.Add(ctx, 1)
	if s.notifier != nil {
		s.notifier.Notify(student, fmt.Sprintf("Your borrow request was approved. Return by %s.", loan.DueDate.Format("02 Jan 2006")))
	}
	return loan, nil
}

// Reject marks a pending request rejected. No inventory side effect.
func (s *service) Reject(ctx context.Context, requestID uuid.UUID) (*BorrowRequest, error) {
	var req BorrowRequest

	err := s.store.WithinTx(ctx, "circulation.reject", func(tx *sqlx.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT id, student_id, book_id, status, requested_at
			FROM borrow_requests
			WHERE id = $1
			FOR UPDATE
		`, requestID).Scan(&req.ID, &req.StudentID, &req.BookID, &req.Status, &req.RequestedAt)
		if err != nil {
			return store.NotFound(err)
		}
		if req.Status != RequestPending {
			return fmt.Errorf("%w: request is already %s", errs.ErrInvalidTransition, req.Status)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE borrow_requests SET status = $1 WHERE id = $2
		`, RequestRejected, req.ID); err != nil {
			return fmt.Errorf("reject request: %w", err)
		}
		req.Status = RequestRejected

		return s.journal.Record(ctx, tx, "request", req.ID, "RequestRejected", RequestRejectedEvent{
			RequestID: req.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.requestsRejected.Add(ctx, 1)
	if s.notifier != nil {
		s.notifier.Notify(req.StudentID, "Your borrow request was rejected.")
	}
	return &req, nil
}

// IssueLoan hands a copy directly to a student, bypassing the request queue.
// Zero times default to now and now plus one month.
func (s *service) IssueLoan(ctx context.Context, studentID, bookID uuid.UUID, issuedAt, dueDate time.Time) (*Loan, error) {
	if issuedAt.IsZero() {
		issuedAt = time.Now().UTC()
	}
	if dueDate.IsZero() {
		dueDate = DueDateFrom(issuedAt)
	}
	if dueDate.Before(issuedAt) {
		return nil, errs.Validation("due_date", "must not be before issued_at")
	}

	var loan *Loan
	err := s.store.WithinTx(ctx, "circulation.issue_loan", func(tx *sqlx.Tx) error {
		var studentExists bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
		`, studentID).Scan(&studentExists); err != nil {
			return fmt.Errorf("check student: %w", err)
		}
		if !studentExists {
			return errs.ErrNotFound
		}

		if err := s.checkLoanLimit(ctx, tx, studentID); err != nil {
			return err
		}

		available, err := s.lockBook(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if available < 1 {
			return errs.ErrOutOfStock
		}

		loan, err = s.insertLoan(ctx, tx, studentID, bookID, issuedAt, dueDate)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.loansIssued.Add(ctx, 1)
	return loan, nil
}

// ReturnLoan puts a copy back on the shelf. The availability increment is
// capped at total_copies so a stray double return cannot push the count past
// the inventory.
func (s *service) ReturnLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	var loan Loan

	err := s.store.WithinTx(ctx, "circulation.return_loan", func(tx *sqlx.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT id, student_id, book_id, issued_at, due_date, returned_at
			FROM loans
			WHERE id = $1
			FOR UPDATE
		`, loanID).Scan(&loan.ID, &loan.StudentID, &loan.BookID, &loan.IssuedAt, &loan.DueDate, &loan.ReturnedAt)
		if err != nil {
			return store.NotFound(err)
		}
		if loan.ReturnedAt != nil {
			return errs.ErrAlreadyReturned
		}

		if _, err := s.lockBook(ctx, tx, loan.BookID); err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
			UPDATE loans SET returned_at = $1 WHERE id = $2
		`, now, loan.ID); err != nil {
			return fmt.Errorf("mark loan returned: %w", err)
		}
		loan.ReturnedAt = &now

		if _, err := tx.ExecContext(ctx, `
			UPDATE books
			SET available_copies = LEAST(total_copies, available_copies + 1), updated_at = NOW()
			WHERE id = $1
		`, loan.BookID); err != nil {
			return fmt.Errorf("increment availability: %w", err)
		}

		return s.journal.Record(ctx, tx, "loan", loan.ID, "LoanReturned", LoanReturnedEvent{
			LoanID:     loan.ID,
			BookID:     loan.BookID,
			ReturnedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	loan.Status = LoanReturned
	s.loansReturned.Add(ctx, 1)
	return &loan, nil
}

// lockBook takes the exclusive row lock that serializes every composite
// operation touching this book, and returns the availability as of the lock.
func (s *service) lockBook(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) (int, error) {
	var available int
	err := tx.QueryRowContext(ctx, `
		SELECT available_copies FROM books WHERE id = $1 FOR UPDATE
	`, bookID).Scan(&available)
	if err != nil {
		return 0, store.NotFound(err)
	}
	return available, nil
}

// insertLoan creates the loan row and decrements availability; the caller
// holds the book lock and has already verified stock.
func (s *service) insertLoan(ctx context.Context, tx *sqlx.Tx, studentID, bookID uuid.UUID, issuedAt, dueDate time.Time) (*Loan, error) {
	loan := &Loan{
		ID:        uuid.New(),
		StudentID: studentID,
		BookID:    bookID,
		IssuedAt:  issuedAt,
		DueDate:   dueDate,
		Status:    LoanIssued,
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO loans (id, student_id, book_id, issued_at, due_date)
		VALUES ($1, $2, $3, $4, $5)
	`, loan.ID, loan.StudentID, loan.BookID, loan.IssuedAt, loan.DueDate); err != nil {
		return nil, fmt.Errorf("insert loan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE books
		SET available_copies = available_copies - 1, updated_at = NOW()
		WHERE id = $1
	`, bookID); err != nil {
		return nil, fmt.Errorf("decrement availability: %w", err)
	}

	if err := s.journal.Record(ctx, tx, "loan", loan.ID, "LoanIssued", LoanIssuedEvent{
		LoanID:    loan.ID,
		StudentID: studentID,
		BookID:    bookID,
		DueDate:   dueDate,
	}); err != nil {
		return nil, err
	}

	return loan, nil
}

func (s *service) checkLoanLimit(ctx context.Context, tx *sqlx.Tx, studentID uuid.UUID) error {
	if s.maxActiveLoans <= 0 {
		return nil
	}

	var active int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM loans WHERE student_id = $1 AND returned_at IS NULL
	`, studentID).Scan(&active)
	if err != nil {
		return fmt.Errorf("count active loans: %w", err)
	}
	if active >= s.maxActiveLoans {
		return errs.ErrLoanLimitReached
	}
	return nil
}
