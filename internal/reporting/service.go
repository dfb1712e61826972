// internal/reporting/service.go
package reporting

import (
	"context"
)

// Stats is the dashboard aggregate consumed by the presentation layer.
type Stats struct {
	TotalBooks         int `db:"total_books" json:"total_books"`
	AvailableCopies    int `db:"available_copies" json:"available_copies"`
	ActiveLoans        int `db:"active_loans" json:"active_loans"`
	OverdueLoans       int `db:"overdue_loans" json:"overdue_loans"`
	PendingRequests    int `db:"pending_requests" json:"pending_requests"`
	RegisteredStudents int `db:"registered_students" json:"registered_students"`
}

// Service is the read-only dashboard projection. It never mutates state and
// is eventually consistent with the last committed transition.
type Service interface {
	DashboardStats(ctx context.Context) (*Stats, error)
}
