// internal/reporting/handler.go
package reporting

import (
	"net/http"

	"librakeep/internal/web"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		web.Error(w, err)
		return
	}

	web.JSON(w, http.StatusOK, stats)
}
