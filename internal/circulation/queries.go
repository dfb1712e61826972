// internal/circulation/queries.go
package circulation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Read-only projections. The overdue status is derived in SQL at read time;
// nothing here mutates state.

const loanSelect = `
	SELECT l.id, l.student_id, l.book_id, l.issued_at, l.due_date, l.returned_at,
	       b.title AS book_title,
	       CASE WHEN l.returned_at IS NOT NULL THEN 'returned'
	            WHEN l.due_date < NOW() THEN 'overdue'
	            ELSE 'issued' END AS status
	FROM loans l
	JOIN books b ON b.id = l.book_id`

const loanStatusExpr = `
	CASE WHEN l.returned_at IS NOT NULL THEN 'returned'
	     WHEN l.due_date < NOW() THEN 'overdue'
	     ELSE 'issued' END`

// ListLoans returns every loan, oldest first.
func (s *service) ListLoans(ctx context.Context) ([]*Loan, error) {
	var loans []*Loan
	err := s.store.DB.SelectContext(ctx, &loans, loanSelect+`
		ORDER BY l.issued_at ASC, l.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}

// SearchLoans matches the keyword against the book title or the derived
// loan status.
func (s *service) SearchLoans(ctx context.Context, keyword string) ([]*Loan, error) {
	var loans []*Loan
	err := s.store.DB.SelectContext(ctx, &loans, loanSelect+`
		WHERE b.title ILIKE $1 OR `+loanStatusExpr+` ILIKE $1
		ORDER BY l.issued_at ASC, l.id ASC
	`, "%"+keyword+"%")
	if err != nil {
		return nil, fmt.Errorf("search loans: %w", err)
	}
	return loans, nil
}

// LoansForStudent returns one student's full borrowing history.
func (s *service) LoansForStudent(ctx context.Context, studentID uuid.UUID) ([]*Loan, error) {
	var loans []*Loan
	err := s.store.DB.SelectContext(ctx, &loans, loanSelect+`
		WHERE l.student_id = $1
		ORDER BY l.issued_at ASC, l.id ASC
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student loans: %w", err)
	}
	return loans, nil
}

// SearchStudentLoans filters one student's loans by book title or derived
// status.
func (s *service) SearchStudentLoans(ctx context.Context, keyword string, studentID uuid.UUID) ([]*Loan, error) {
	var loans []*Loan
	err := s.store.DB.SelectContext(ctx, &loans, loanSelect+`
		WHERE l.student_id = $2
		  AND (b.title ILIKE $1 OR `+loanStatusExpr+` ILIKE $1)
		ORDER BY l.issued_at ASC, l.id ASC
	`, "%"+keyword+"%", studentID)
	if err != nil {
		return nil, fmt.Errorf("search student loans: %w", err)
	}
	return loans, nil
}

// CountActiveForStudent counts the student's issued and overdue loans.
func (s *service) CountActiveForStudent(ctx context.Context, studentID uuid.UUID) (int, error) {
	var count int
	err := s.store.DB.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM loans WHERE student_id = $1 AND returned_at IS NULL
	`, studentID)
	if err != nil {
		return 0, fmt.Errorf("count active loans: %w", err)
	}
	return count, nil
}

const requestSelect = `
	SELECT br.id, br.student_id, br.book_id, br.status, br.requested_at,
	       u.name AS student_name, u.student_number, b.title AS book_title
	FROM borrow_requests br
	JOIN users u ON u.id = br.student_id
	JOIN books b ON b.id = br.book_id`

// ListRequests returns every borrow request, newest first.
func (s *service) ListRequests(ctx context.Context) ([]*BorrowRequest, error) {
	var requests []*BorrowRequest
	err := s.store.DB.SelectContext(ctx, &requests, requestSelect+`
		ORDER BY br.requested_at DESC, br.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// SearchRequests matches the keyword against the student's name or number,
// or the book title.
func (s *service) SearchRequests(ctx context.Context, keyword string) ([]*BorrowRequest, error) {
	var requests []*BorrowRequest
	err := s.store.DB.SelectContext(ctx, &requests, requestSelect+`
		WHERE u.name ILIKE $1 OR u.student_number ILIKE $1 OR b.title ILIKE $1
		ORDER BY br.requested_at DESC, br.id DESC
	`, "%"+keyword+"%")
	if err != nil {
		return nil, fmt.Errorf("search requests: %w", err)
	}
	return requests, nil
}
