// internal/web/respond.go
package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"librakeep/internal/errs"
)

// JSON writes v as a JSON response.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("encode response: %v", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Error maps the shared error taxonomy onto HTTP statuses and writes the
// response. Unknown errors are logged and reported as a plain 500 so
// internals never leak to clients.
func Error(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		JSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	JSON(w, status, errorResponse{Error: err.Error()})
}

// StatusFor resolves an engine error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errs.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrOutOfStock),
		errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrAlreadyReturned),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrDuplicateRequest),
		errors.Is(err, errs.ErrDuplicateEmail),
		errors.Is(err, errs.ErrLoanLimitReached):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errs.ErrRetryable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
