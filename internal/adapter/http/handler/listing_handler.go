package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type listingService interface {
	Create(ctx context.Context, owner *domain.User, fields domain.ListingFields, localPaths []string) (*domain.Listing, error)
	List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error)
	Update(ctx context.Context, id, callerID string, fields domain.ListingFields, localPaths []string) (*domain.Listing, error)
	Delete(ctx context.Context, id, callerID string) error
	RemoveImage(ctx context.Context, id, imageURL string) error
	ExportCSV(ctx context.Context, ownerID string) ([]byte, error)
}

// ListingHandler serves /api/listing.
type ListingHandler struct {
	uc      listingService
	uploads UploadOptions
	logger  *logger.Logger
}

func NewListingHandler(uc listingService, uploads UploadOptions, log *logger.Logger) *ListingHandler {
	return &ListingHandler{uc: uc, uploads: uploads, logger: log.Named("ListingHandler")}
}

func (h *ListingHandler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	form, err := parseListingRequest(w, r, h.uploads)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defer form.Cleanup()

	listing, err := h.uc.Create(r.Context(), user, form.Fields, form.LocalPaths)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Listing created successfully", Data: listing})
}

func (h *ListingHandler) HandleListListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ListingFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	var err error
	if filter.MinPrice, err = priceParam(q.Get("minPrice")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if filter.MaxPrice, err = priceParam(q.Get("maxPrice")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	listings, err := h.uc.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: nonNilListings(listings)})
}

func (h *ListingHandler) HandleGetListingByID(w http.ResponseWriter, r *http.Request) {
	listing, err := h.uc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: listing})
}

func (h *ListingHandler) HandleGetUserListings(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	listings, err := h.uc.GetByOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: nonNilListings(listings)})
}

func (h *ListingHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	data, err := h.uc.ExportCSV(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=listings.csv")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("Failed to write CSV export", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (h *ListingHandler) HandleUpdateListing(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	form, err := parseListingRequest(w, r, h.uploads)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defer form.Cleanup()

	listing, err := h.uc.Update(r.Context(), chi.URLParam(r, "id"), user.ID, form.Fields, form.LocalPaths)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Listing updated successfully", Data: listing})
}

func (h *ListingHandler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Listing deleted successfully"})
}

type removeImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

func (h *ListingHandler) HandleRemoveImage(w http.ResponseWriter, r *http.Request) {
	var req removeImageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.uc.RemoveImage(r.Context(), chi.URLParam(r, "id"), req.ImageURL); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Image deleted successfully"})
}

func priceParam(raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := parsePrice(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: Invalid price filter", domain.ErrInvalidInput)
	}
	return &v, nil
}

func nonNilListings(l []*domain.Listing) []*domain.Listing {
	if l == nil {
		return []*domain.Listing{}
	}
	return l
}
