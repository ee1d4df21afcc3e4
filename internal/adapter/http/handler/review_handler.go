package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

type reviewService interface {
	Create(ctx context.Context, author *domain.User, listingID, comment string, rating int) (*domain.Review, error)
	ListForListing(ctx context.Context, listingID string) ([]*domain.Review, error)
	Delete(ctx context.Context, listingID, reviewID, callerID string) error
}

type ReviewHandler struct {
	uc     reviewService
	logger *logger.Logger
}

func NewReviewHandler(uc reviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{uc: uc, logger: log.Named("ReviewHandler")}
}

type createReviewRequest struct {
	Comment string      `json:"comment"`
	Rating  ratingValue `json:"rating"`
}

// ratingValue accepts a JSON number or a numeric string, since form inputs
// post the rating as text. An empty string counts as missing.
type ratingValue int

func (v *ratingValue) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*v = 0
			return nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: Rating must be a whole number", domain.ErrInvalidInput)
	}
	*v = ratingValue(n)
	return nil
}

func (h *ReviewHandler) HandleCreateReview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	review, err := h.uc.Create(r.Context(), user, chi.URLParam(r, "listingId"), req.Comment, int(req.Rating))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Review created successfully", Data: review})
}

func (h *ReviewHandler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.uc.ListForListing(r.Context(), chi.URLParam(r, "listingId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: reviews})
}

type deleteReviewRequest struct {
	ReviewID string `json:"reviewId"`
}

func (h *ReviewHandler) HandleDeleteReview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req deleteReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "listingId"), req.ReviewID, user.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Review deleted successfully"})
}
