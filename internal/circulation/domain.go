// internal/circulation/domain.go
package circulation

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatus is derived at read time: a loan is overdue when it has not been
// returned and its due date has passed. Only "returned" is stored terminally.
type LoanStatus string

const (
	LoanIssued   LoanStatus = "issued"
	LoanOverdue  LoanStatus = "overdue"
	LoanReturned LoanStatus = "returned"
)

// RequestStatus tracks a borrow request. "approved" and "rejected" are
// terminal; there are no transitions out of them.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// LoanPeriod is how long a copy may stay out: one calendar month.
func DueDateFrom(issuedAt time.Time) time.Time {
	return issuedAt.AddDate(0, 1, 0)
}

// Loan is one copy in a student's hands, or the record of it having been
// there. BookTitle is joined in for read views.
type Loan struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	StudentID  uuid.UUID  `db:"student_id" json:"student_id"`
	BookID     uuid.UUID  `db:"book_id" json:"book_id"`
	IssuedAt   time.Time  `db:"issued_at" json:"issued_at"`
	DueDate    time.Time  `db:"due_date" json:"due_date"`
	ReturnedAt *time.Time `db:"returned_at" json:"returned_at,omitempty"`
	Status     LoanStatus `db:"status" json:"status"`
	BookTitle  string     `db:"book_title" json:"book_title,omitempty"`
}

// StatusAt derives the loan's status at the given instant.
func (l *Loan) StatusAt(now time.Time) LoanStatus {
	switch {
	case l.ReturnedAt != nil:
		return LoanReturned
	case now.After(l.DueDate):
		return LoanOverdue
	default:
		return LoanIssued
	}
}

// Active reports whether the copy is still out (issued or overdue).
func (l *Loan) Active() bool {
	return l.ReturnedAt == nil
}

// BorrowRequest records a student's intent to borrow a book. Stock is checked
// at approval time, not request time. StudentName, StudentNumber and
// BookTitle are joined in for read views.
type BorrowRequest struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	StudentID     uuid.UUID     `db:"student_id" json:"student_id"`
	BookID        uuid.UUID     `db:"book_id" json:"book_id"`
	Status        RequestStatus `db:"status" json:"status"`
	RequestedAt   time.Time     `db:"requested_at" json:"requested_at"`
	StudentName   string        `db:"student_name" json:"student_name,omitempty"`
	StudentNumber string        `db:"student_number" json:"student_number,omitempty"`
	BookTitle     string        `db:"book_title" json:"book_title,omitempty"`
}

// Journal payloads.

type RequestCreatedEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	StudentID uuid.UUID `json:"student_id"`
	BookID    uuid.UUID `json:"book_id"`
}

type RequestApprovedEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	LoanID    uuid.UUID `json:"loan_id"`
}

type RequestRejectedEvent struct {
	RequestID uuid.UUID `json:"request_id"`
}

type LoanIssuedEvent struct {
	LoanID    uuid.UUID `json:"loan_id"`
	StudentID uuid.UUID `json:"student_id"`
	BookID    uuid.UUID `json:"book_id"`
	DueDate   time.Time `json:"due_date"`
}

type LoanReturnedEvent struct {
	LoanID     uuid.UUID `json:"loan_id"`
	BookID     uuid.UUID `json:"book_id"`
	ReturnedAt time.Time `json:"returned_at"`
}
