package router

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/handler"
	"github.com/go-chi/chi/v5"
)

// SetupListingRoutes mounts /api/listing. Static segments are registered
// alongside /{id}; chi prefers them regardless of order.
func SetupListingRoutes(mux *chi.Mux, h *handler.ListingHandler, auth func(http.Handler) http.Handler) {
	mux.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/api/listing", h.HandleCreateListing)
		r.Get("/api/listing/user-listing", h.HandleGetUserListings)
		r.Get("/api/listing/export/csv", h.HandleExportCSV)
		r.Put("/api/listing/{id}", h.HandleUpdateListing)
		r.Delete("/api/listing/{id}", h.HandleDeleteListing)
	})

	mux.Get("/api/listing", h.HandleListListings)
	mux.Get("/api/listing/{id}", h.HandleGetListingByID)
	// Unauthenticated; the usecase only removes URLs attached to the listing.
	mux.Delete("/api/listing/{id}/image", h.HandleRemoveImage)
}
