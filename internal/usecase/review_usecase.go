package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/metrics"
	"go.uber.org/zap"
)

// ReviewUsecase implements the business logic for reviews.
type ReviewUsecase struct {
	reviews   domain.ReviewRepository
	listings  domain.ListingRepository
	cache     domain.ListingCache
	publisher domain.EventPublisher
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

// NewReviewUsecase wires the review flows. cache may be nil; when set, the
// listing entry is dropped whenever its review list changes.
func NewReviewUsecase(reviews domain.ReviewRepository, listings domain.ListingRepository, cache domain.ListingCache, publisher domain.EventPublisher, m *metrics.MetricsManager, log *logger.Logger) *ReviewUsecase {
	return &ReviewUsecase{
		reviews:   reviews,
		listings:  listings,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		logger:    log.Named("ReviewUsecase"),
	}
}

// Create stores a review by author on listingID and links it to the listing.
func (uc *ReviewUsecase) Create(ctx context.Context, author *domain.User, listingID, comment string, rating int) (*domain.Review, error) {
	review, err := domain.NewReview(listingID, author.ID, comment, rating)
	if err != nil {
		return nil, err
	}

	if _, err := uc.listings.GetByID(ctx, listingID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: Listing not found", domain.ErrNotFound)
		}
		return nil, err
	}

	if err := uc.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	if err := uc.listings.PushReview(ctx, listingID, review.ID); err != nil {
		// The listing vanished between the check and the push.
		if delErr := uc.reviews.Delete(ctx, review.ID); delErr != nil {
			uc.logger.Error("Failed to roll back orphan review", zap.String("review_id", review.ID), zap.Error(delErr))
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: Listing not found", domain.ErrNotFound)
		}
		return nil, err
	}
	uc.invalidate(ctx, listingID)
	review.Owner = &domain.UserRef{ID: author.ID, Username: author.Username}

	uc.metrics.ReviewCreated()
	uc.publish(ctx, nats.SubjectReviewCreated, map[string]interface{}{
		"review_id":  review.ID,
		"listing_id": listingID,
		"user_id":    author.ID,
		"rating":     review.Rating,
		"created_at": review.CreatedAt.Format(time.RFC3339Nano),
	})
	uc.logger.Info("Review created", zap.String("review_id", review.ID), zap.String("listing_id", listingID))
	return review, nil
}

// ListForListing returns the listing's reviews in the order the listing
// references them. A missing listing yields an empty list.
func (uc *ReviewUsecase) ListForListing(ctx context.Context, listingID string) ([]*domain.Review, error) {
	listing, err := uc.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []*domain.Review{}, nil
		}
		return nil, err
	}
	if len(listing.ReviewIDs) == 0 {
		return []*domain.Review{}, nil
	}
	return uc.reviews.FindByIDs(ctx, listing.ReviewIDs)
}

// Delete removes reviewID from listingID. The caller must be the review's
// author or the listing's owner.
func (uc *ReviewUsecase) Delete(ctx context.Context, listingID, reviewID, callerID string) error {
	if reviewID == "" {
		return fmt.Errorf("%w: Review ID is required", domain.ErrInvalidInput)
	}

	listing, err := uc.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: Listing not found", domain.ErrNotFound)
		}
		return err
	}
	if !listing.HasReview(reviewID) {
		return fmt.Errorf("%w: Review not found", domain.ErrNotFound)
	}

	review, err := uc.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: Review not found", domain.ErrNotFound)
		}
		return err
	}
	if !review.CanBeDeletedBy(callerID, listing) {
		uc.logger.Warn("User forbidden to delete review",
			zap.String("review_id", reviewID), zap.String("review_author", review.OwnerID), zap.String("requesting_user", callerID))
		return fmt.Errorf("%w: You are not authorized to delete this review", domain.ErrForbidden)
	}

	if err := uc.listings.PullReview(ctx, listingID, reviewID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: Review not found", domain.ErrNotFound)
		}
		return err
	}
	uc.invalidate(ctx, listingID)
	if err := uc.reviews.Delete(ctx, reviewID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	uc.metrics.ReviewDeleted()
	uc.publish(ctx, nats.SubjectReviewDeleted, map[string]interface{}{
		"review_id":  reviewID,
		"listing_id": listingID,
		"deleted_by": callerID,
	})
	uc.logger.Info("Review deleted", zap.String("review_id", reviewID), zap.String("listing_id", listingID))
	return nil
}

func (uc *ReviewUsecase) invalidate(ctx context.Context, listingID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, listingID); err != nil {
		uc.logger.Warn("Listing cache invalidation failed", zap.String("listing_id", listingID), zap.Error(err))
	}
}

func (uc *ReviewUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if err := uc.publisher.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
