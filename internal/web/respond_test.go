// internal/web/respond_test.go
package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"librakeep/internal/errs"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", errs.Validation("title", "must not be empty"), http.StatusUnprocessableEntity},
		{"not found", errs.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get book: %w", errs.ErrNotFound), http.StatusNotFound},
		{"out of stock", errs.ErrOutOfStock, http.StatusConflict},
		{"invalid transition", errs.ErrInvalidTransition, http.StatusConflict},
		{"already returned", errs.ErrAlreadyReturned, http.StatusConflict},
		{"conflict", errs.ErrConflict, http.StatusConflict},
		{"duplicate request", errs.ErrDuplicateRequest, http.StatusConflict},
		{"duplicate email", errs.ErrDuplicateEmail, http.StatusConflict},
		{"loan limit", errs.ErrLoanLimitReached, http.StatusConflict},
		{"bad credentials", errs.ErrInvalidCredentials, http.StatusUnauthorized},
		{"rate limited", errs.ErrRateLimited, http.StatusTooManyRequests},
		{"retryable", errs.ErrRetryable, http.StatusServiceUnavailable},
		{"wrapped retryable", fmt.Errorf("%w: lock timeout", errs.ErrRetryable), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestErrorExposesDomainMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errs.ErrOutOfStock)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), errs.ErrOutOfStock.Error())
}
