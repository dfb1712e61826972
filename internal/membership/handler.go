// internal/membership/handler.go
package membership

import (
	"encoding/json"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"librakeep/internal/errs"
	"librakeep/internal/web"
)

// Session keys shared with the authentication middleware.
const (
	SessionKeyUserID = "authenticatedUserID"
	SessionKeyRole   = "userRole"
)

type Handler struct {
	service  Service
	sessions *scs.SessionManager
}

func NewHandler(service Service, sessions *scs.SessionManager) *Handler {
	return &Handler{service: service, sessions: sessions}
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Password      string `json:"password"`
		Role          string `json:"role"`
		StudentNumber string `json:"student_number"`
		MobileNo      string `json:"mobile_no"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, errs.Validation("body", "must be valid JSON"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password, req.Role, req.StudentNumber, req.MobileNo)
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusCreated, user)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, errs.Validation("body", "must be valid JSON"))
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		web.Error(w, err)
		return
	}

	// Rotate the session token on privilege change.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		web.Error(w, err)
		return
	}
	h.sessions.Put(r.Context(), SessionKeyUserID, user.ID.String())
	h.sessions.Put(r.Context(), SessionKeyRole, user.Role)

	web.JSON(w, http.StatusOK, user)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		web.Error(w, err)
		return
	}
	h.sessions.Remove(r.Context(), SessionKeyUserID)
	h.sessions.Remove(r.Context(), SessionKeyRole)

	web.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) HandleStudents(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("search")

	var (
		students []*User
		err      error
	)
	if keyword != "" {
		students, err = h.service.SearchStudents(r.Context(), keyword)
	} else {
		students, err = h.service.ListStudents(r.Context())
	}
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, students)
}
