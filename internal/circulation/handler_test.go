// internal/circulation/handler_test.go
package circulation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librakeep/internal/errs"
	"librakeep/internal/web"
)

// stubService lets each test pin the behavior of the one method under test.
type stubService struct {
	approve       func(ctx context.Context, requestID uuid.UUID) (*Loan, error)
	reject        func(ctx context.Context, requestID uuid.UUID) (*BorrowRequest, error)
	createRequest func(ctx context.Context, studentID, bookID uuid.UUID) (*BorrowRequest, error)
	returnLoan    func(ctx context.Context, loanID uuid.UUID) (*Loan, error)
	loansFor      func(ctx context.Context, studentID uuid.UUID) ([]*Loan, error)
}

func (s *stubService) CreateRequest(ctx context.Context, studentID, bookID uuid.UUID) (*BorrowRequest, error) {
	return s.createRequest(ctx, studentID, bookID)
}

func (s *stubService) Approve(ctx context.Context, requestID uuid.UUID) (*Loan, error) {
	return s.approve(ctx, requestID)
}

func (s *stubService) Reject(ctx context.Context, requestID uuid.UUID) (*BorrowRequest, error) {
	return s.reject(ctx, requestID)
}

func (s *stubService) IssueLoan(ctx context.Context, studentID, bookID uuid.UUID, issuedAt, dueDate time.Time) (*Loan, error) {
	return nil, errs.ErrNotFound
}

func (s *stubService) ReturnLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	return s.returnLoan(ctx, loanID)
}

func (s *stubService) ListLoans(ctx context.Context) ([]*Loan, error) { return nil, nil }

func (s *stubService) SearchLoans(ctx context.Context, keyword string) ([]*Loan, error) {
	return nil, nil
}

func (s *stubService) LoansForStudent(ctx context.Context, studentID uuid.UUID) ([]*Loan, error) {
	return s.loansFor(ctx, studentID)
}

func (s *stubService) SearchStudentLoans(ctx context.Context, keyword string, studentID uuid.UUID) ([]*Loan, error) {
	return nil, nil
}

func (s *stubService) CountActiveForStudent(ctx context.Context, studentID uuid.UUID) (int, error) {
	return 0, nil
}

func (s *stubService) ListRequests(ctx context.Context) ([]*BorrowRequest, error) { return nil, nil }
func (s *stubService) SearchRequests(ctx context.Context, keyword string) ([]*BorrowRequest, error) {
	return nil, nil
}

func newTestRouter(svc Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Post("/requests/{id}/approve", h.HandleApproveRequest)
	r.Post("/requests/{id}/reject", h.HandleRejectRequest)
	r.Post("/loans/{id}/return", h.HandleReturnLoan)
	r.Post("/borrow-requests", h.HandleCreateRequest)
	r.Get("/mybooks", h.HandleMyBooks)
	return r
}

func TestHandleApproveRequestCreated(t *testing.T) {
	requestID := uuid.New()
	loanID := uuid.New()

	svc := &stubService{
		approve: func(ctx context.Context, id uuid.UUID) (*Loan, error) {
			require.Equal(t, requestID, id)
			return &Loan{ID: loanID, Status: LoanIssued}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/requests/"+requestID.String()+"/approve", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), loanID.String())
}

func TestHandleApproveRequestOutOfStock(t *testing.T) {
	svc := &stubService{
		approve: func(ctx context.Context, id uuid.UUID) (*Loan, error) {
			return nil, errs.ErrOutOfStock
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/requests/"+uuid.NewString()+"/approve", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleApproveRequestBadID(t *testing.T) {
	svc := &stubService{}

	req := httptest.NewRequest(http.MethodPost, "/requests/not-a-uuid/approve", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleRejectRequestAlreadyDecided(t *testing.T) {
	svc := &stubService{
		reject: func(ctx context.Context, id uuid.UUID) (*BorrowRequest, error) {
			return nil, errs.ErrInvalidTransition
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/requests/"+uuid.NewString()+"/reject", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleReturnLoanAlreadyReturned(t *testing.T) {
	svc := &stubService{
		returnLoan: func(ctx context.Context, id uuid.UUID) (*Loan, error) {
			return nil, errs.ErrAlreadyReturned
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/loans/"+uuid.NewString()+"/return", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleCreateRequestUsesActor(t *testing.T) {
	studentID := uuid.New()
	bookID := uuid.New()

	svc := &stubService{
		createRequest: func(ctx context.Context, sid, bid uuid.UUID) (*BorrowRequest, error) {
			require.Equal(t, studentID, sid)
			require.Equal(t, bookID, bid)
			return &BorrowRequest{ID: uuid.New(), StudentID: sid, BookID: bid, Status: RequestPending}, nil
		},
	}

	body := strings.NewReader(`{"book_id":"` + bookID.String() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/borrow-requests", body)
	ctx := web.WithActor(req.Context(), web.Actor{ID: studentID, Role: web.RoleStudent})
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending"`)
}

func TestHandleCreateRequestUnauthenticated(t *testing.T) {
	svc := &stubService{}

	req := httptest.NewRequest(http.MethodPost, "/borrow-requests", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleMyBooksSplitsCurrentAndPast(t *testing.T) {
	studentID := uuid.New()
	returned := time.Now().Add(-time.Hour)

	svc := &stubService{
		loansFor: func(ctx context.Context, sid uuid.UUID) ([]*Loan, error) {
			return []*Loan{
				{ID: uuid.New(), StudentID: sid, Status: LoanIssued},
				{ID: uuid.New(), StudentID: sid, Status: LoanReturned, ReturnedAt: &returned},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/mybooks", nil)
	ctx := web.WithActor(req.Context(), web.Actor{ID: studentID, Role: web.RoleStudent})
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"borrowed":1`)
}
