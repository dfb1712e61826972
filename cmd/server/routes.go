// cmd/server/routes.go
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"librakeep/internal/web"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(app.sessions.LoadAndSave)
	r.Use(app.authenticate)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		web.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", app.members.HandleSignup)
		r.Post("/auth/login", app.members.HandleLogin)
		r.Post("/auth/logout", app.members.HandleLogout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.requireRole(web.RoleAdmin))

			r.Get("/dashboard", app.reports.HandleDashboard)

			r.Get("/books", app.books.HandleListBooks)
			r.Post("/books", app.books.HandleCreateBook)
			r.Get("/books/{id}", app.books.HandleGetBook)
			r.Put("/books/{id}", app.books.HandleUpdateBook)
			r.Delete("/books/{id}", app.books.HandleDeleteBook)

			r.Get("/students", app.members.HandleStudents)

			r.Get("/loans", app.circulation.HandleListLoans)
			r.Post("/loans/issue", app.circulation.HandleIssueLoan)
			r.Post("/loans/{id}/return", app.circulation.HandleReturnLoan)

			r.Get("/requests", app.circulation.HandleListRequests)
			r.Post("/requests/{id}/approve", app.circulation.HandleApproveRequest)
			r.Post("/requests/{id}/reject", app.circulation.HandleRejectRequest)
		})

		r.Route("/student", func(r chi.Router) {
			r.Use(app.requireRole(web.RoleStudent))

			r.Get("/books", app.books.HandleListBooks)
			r.Get("/books/{id}", app.books.HandleGetBook)
			r.Get("/mybooks", app.circulation.HandleMyBooks)
			r.Post("/borrow-requests", app.circulation.HandleCreateRequest)
			r.Get("/notifications", app.hub.HandleWS)
		})
	})

	return r
}
