package router

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/handler"
	"github.com/go-chi/chi/v5"
)

// SetupReviewRoutes mounts /api/review.
func SetupReviewRoutes(mux *chi.Mux, h *handler.ReviewHandler, auth func(http.Handler) http.Handler) {
	mux.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/api/review/create/{listingId}", h.HandleCreateReview)
		r.Delete("/api/review/delete/{listingId}", h.HandleDeleteReview)
	})

	mux.Get("/api/review/{listingId}", h.HandleListReviews)
}
