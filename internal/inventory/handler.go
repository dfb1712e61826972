// internal/inventory/handler.go
package inventory

import (
	"encoding/json"
	"net/http"

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

type bookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	TotalCopies int    `json:"total_copies"`
}

func (h *Handler) HandleListBooks(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("search")

	var (
		books []*Book
		err   error
	)
	if keyword != "" {
		books, err = h.service.Search(r.Context(), keyword)
	} else {
		books, err = h.service.ListBooks(r.Context())
	}
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, books)
}

func (h *Handler) HandleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, errs.Validation("id", "must be a valid UUID"))
		return
	}

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, book)
}

func (h *Handler) HandleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, errs.Validation("body", "must be valid JSON"))
		return
	}

	book, err := h.service.CreateBook(r.Context(), req.Title, req.Author, req.TotalCopies, req.Genre)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusCreated, book)
}

func (h *Handler) HandleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, errs.Validation("id", "must be a valid UUID"))
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, errs.Validation("body", "must be valid JSON"))
		return
	}

	book, err := h.service.UpdateBook(r.Context(), id, req.Title, req.Author, req.TotalCopies, req.Genre)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, book)
}

func (h *Handler) HandleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, errs.Validation("id", "must be a valid UUID"))
		return
	}

	cascade := r.URL.Query().Get("cascade") == "true"

	if err := h.service.DeleteBook(r.Context(), id, cascade); err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]string{"message": "book deleted"})
}
