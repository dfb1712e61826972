// internal/circulation/service.go
package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service is the consistency engine: every mutation that touches a book's
// available_copies together with a loan or request row commits as one atomic
// unit, so copy counts, loans and request states never diverge.
type Service interface {
	CreateRequest(ctx context.Context, studentID, bookID uuid.UUID) (*BorrowRequest, error)
	Approve(ctx context.Context, requestID uuid.UUID) (*Loan, error)
	Reject(ctx context.Context, requestID uuid.UUID) (*BorrowRequest, error)

	IssueLoan(ctx context.Context, studentID, bookID uuid.UUID, issuedAt, dueDate time.Time) (*Loan, error)
	ReturnLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error)

	ListLoans(ctx context.Context) ([]*Loan, error)
	SearchLoans(ctx context.Context, keyword string) ([]*Loan, error)
	LoansForStudent(ctx context.Context, studentID uuid.UUID) ([]*Loan, error)
	SearchStudentLoans(ctx context.Context, keyword string, studentID uuid.UUID) ([]*Loan, error)
	CountActiveForStudent(ctx context.Context, studentID uuid.UUID) (int, error)

	ListRequests(ctx context.Context) ([]*BorrowRequest, error)
	SearchRequests(ctx context.Context, keyword string) ([]*BorrowRequest, error)
}

// Notifier pushes outcome messages to students. The engine calls it only
// after the transaction has committed.
type Notifier interface {
	Notify(studentID uuid.UUID, message string)
}
