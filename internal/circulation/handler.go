// internal/circulation/handler.go
package circulation

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"librakeep/internal/errs"
	"librakeep/internal/web"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleListLoans serves the admin loan ledger, optionally filtered.
func (h *Handler) HandleListLoans(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("search")

	var (
		loans []*Loan
		err   error
	)
	if keyword != "" {
		loans, err = h.service.SearchLoans(r.Context(), keyword)
	} else {
		loans, err = h.service.ListLoans(r.Context())
	}
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, loans)
}

// HandleIssueLoan issues a copy directly to a student.
func (h *Handler) HandleIssueLoan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID uuid.UUID  `json:"student_id"`
		BookID    uuid.UUID  `json:"book_id"`
		IssuedAt  *time.Time `json:"issued_at"`
		DueDate   *time.Time `json:"due_date"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, errs.Validation("body", "must be valid JSON"))
		return
	}

	var issuedAt, dueDate time.Time
	if req.IssuedAt != nil {
		issuedAt = *req.IssuedAt
	}
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	loan, err := h.service.IssueLoan(r.Context(), req.StudentID, req.BookID, issuedAt, dueDate)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusCreated, loan)
}

// HandleReturnLoan puts a borrowed copy back on the shelf.
func (h *Handler) HandleReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, errs.Validation("id", "must be a valid UUID"))
		return
	}

	loan, err := h.service.ReturnLoan(r.Context(), id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, loan)
}

// HandleListRequests serves the admin request queue, newest first.
func (h *Handler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("search")

	var (
		requests []*BorrowRequest
		err      error
	)
	if keyword != "" {
		requests, err = h.service.SearchRequests(r.Context(), keyword)
	} else {
		requests, err = h.service.ListRequests(r.Context())
	}
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, requests)
}

// HandleApproveRequest approves a pending request and issues the loan.
func (h *Handler) HandleApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, errs.Validation("id", "must be a valid UUID"))
		return
	}

	loan, err := h.service.Approve(r.Context(), id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusCreated, loan)
}

// HandleRejectRequest rejects a pending request.
func (h *Handler) HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, errs.Validation("id", "must be a valid UUID"))
		return
	}

	request, err := h.service.Reject(r.Context(), id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, request)
}

// HandleCreateRequest files a borrow request for the authenticated student.
func (h *Handler) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := web.ActorFrom(r.Context())
	if !ok {
		web.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	var req struct {
		BookID uuid.UUID `json:"book_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, errs.Validation("body", "must be valid JSON"))
		return
	}

	request, err := h.service.CreateRequest(r.Context(), actor.ID, req.BookID)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusCreated, request)
}

// HandleMyBooks serves the authenticated student's loans, split into the
// copies still out and the returned history.
func (h *Handler) HandleMyBooks(w http.ResponseWriter, r *http.Request) {
	actor, ok := web.ActorFrom(r.Context())
	if !ok {
		web.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	keyword := r.URL.Query().Get("search")

	var (
		loans []*Loan
		err   error
	)
	if keyword != "" {
		loans, err = h.service.SearchStudentLoans(r.Context(), keyword, actor.ID)
	} else {
		loans, err = h.service.LoansForStudent(r.Context(), actor.ID)
	}
	if err != nil {
		web.Error(w, err)
		return
	}

	current := make([]*Loan, 0)
	past := make([]*Loan, 0)
	for _, loan := range loans {
		if loan.Active() {
			current = append(current, loan)
		} else {
			past = append(past, loan)
		}
	}

	web.JSON(w, http.StatusOK, map[string]any{
		"current_loans": current,
		"past_loans":    past,
		"borrowed":      len(current),
	})
}
