// internal/reporting/implementation.go
package reporting

import (
	"context"
	"fmt"

	"librakeep/internal/store"
)

type service struct {
	store *store.Store
}

func NewService(st *store.Store) Service {
	return &service{store: st}
}

// DashboardStats gathers the aggregate counts in one round trip. Overdue is
// derived here the same way the loan queries derive it.
func (s *service) DashboardStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := s.store.DB.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM books)                                                      AS total_books,
			(SELECT COALESCE(SUM(available_copies), 0) FROM books)                            AS available_copies,
			(SELECT COUNT(*) FROM loans WHERE returned_at IS NULL)                            AS active_loans,
			(SELECT COUNT(*) FROM loans WHERE returned_at IS NULL AND due_date < NOW())       AS overdue_loans,
			(SELECT COUNT(*) FROM borrow_requests WHERE status = 'pending')                   AS pending_requests,
			(SELECT COUNT(*) FROM users WHERE role = 'student')                               AS registered_students
	`)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &stats, nil
}
