package router

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/handler"
	"github.com/go-chi/chi/v5"
)

// SetupUserRoutes mounts /api/user.
func SetupUserRoutes(mux *chi.Mux, h *handler.UserHandler, auth func(http.Handler) http.Handler) {
	mux.Post("/api/user/register", h.Register)
	mux.Post("/api/user/login", h.Login)
	mux.Post("/api/user/logout", h.Logout)

	mux.Group(func(r chi.Router) {
		r.Use(auth)

		r.Get("/api/user/profile", h.GetProfile)
		r.Get("/api/user/admin", h.AdminStats)
	})
}
