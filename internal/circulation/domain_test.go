// internal/circulation/domain_test.go
package circulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDueDateFrom(t *testing.T) {
	issued := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.February, 15, 10, 0, 0, 0, time.UTC), DueDateFrom(issued))

	// AddDate normalizes end-of-month overflow.
	issued = time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), DueDateFrom(issued))
}

func TestLoanStatusAt(t *testing.T) {
	issued := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	due := DueDateFrom(issued)
	returned := issued.Add(48 * time.Hour)

	tests := []struct {
		name       string
		returnedAt *time.Time
		now        time.Time
		want       LoanStatus
	}{
		{"before due date", nil, due.Add(-time.Hour), LoanIssued},
		{"exactly at due date", nil, due, LoanIssued},
		{"past due date", nil, due.Add(time.Minute), LoanOverdue},
		{"returned before due", &returned, due.Add(-time.Hour), LoanReturned},
		{"returned wins over overdue", &returned, due.Add(time.Hour), LoanReturned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := &Loan{IssuedAt: issued, DueDate: due, ReturnedAt: tt.returnedAt}
			assert.Equal(t, tt.want, loan.StatusAt(tt.now))
		})
	}
}

func TestLoanActive(t *testing.T) {
	now := time.Now()
	assert.True(t, (&Loan{}).Active())
	assert.False(t, (&Loan{ReturnedAt: &now}).Active())
}

func TestStatusAtNeverReturnedWhileOut(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		issuedUnix := rapid.Int64Range(0, 4_000_000_000).Draw(t, "issuedUnix")
		offset := rapid.Int64Range(-1_000_000, 100_000_000).Draw(t, "offset")

		issued := time.Unix(issuedUnix, 0).UTC()
		loan := &Loan{IssuedAt: issued, DueDate: DueDateFrom(issued)}

		status := loan.StatusAt(issued.Add(time.Duration(offset) * time.Second))
		if status == LoanReturned {
			t.Fatalf("loan with no return timestamp reported returned")
		}
	})
}
