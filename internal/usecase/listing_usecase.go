package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/metrics"
	"go.uber.org/zap"
)

// ListingUsecase implements listing CRUD on top of the repository and the
// media store.
type ListingUsecase struct {
	listings  domain.ListingRepository
	reviews   domain.ReviewRepository
	storage   domain.MediaStorage
	cleanup   domain.CleanupRepository
	cache     domain.ListingCache
	publisher domain.EventPublisher
	notifier  domain.Notifier
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

// ListingDeps groups the collaborators of ListingUsecase. Cache, Notifier
// and Metrics may be nil.
type ListingDeps struct {
	Listings  domain.ListingRepository
	Reviews   domain.ReviewRepository
	Storage   domain.MediaStorage
	Cleanup   domain.CleanupRepository
	Cache     domain.ListingCache
	Publisher domain.EventPublisher
	Notifier  domain.Notifier
	Metrics   *metrics.MetricsManager
}

func NewListingUsecase(deps ListingDeps, log *logger.Logger) *ListingUsecase {
	return &ListingUsecase{
		listings:  deps.Listings,
		reviews:   deps.Reviews,
		storage:   deps.Storage,
		cleanup:   deps.Cleanup,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logger:    log.Named("ListingUsecase"),
	}
}

// Create uploads the images at localPaths and stores a new listing owned by
// owner.
func (uc *ListingUsecase) Create(ctx context.Context, owner *domain.User, fields domain.ListingFields, localPaths []string) (*domain.Listing, error) {
	if err := fields.ValidateForCreate(); err != nil {
		return nil, err
	}
	if len(localPaths) == 0 {
		return nil, fmt.Errorf("%w: At least one image is required", domain.ErrInvalidInput)
	}

	urls := uc.storage.UploadBatch(ctx, localPaths)
	if len(urls) == 0 {
		uc.logger.Warn("All image uploads failed", zap.String("owner_id", owner.ID), zap.Int("files", len(localPaths)))
		return nil, fmt.Errorf("%w: Failed to upload images", domain.ErrInvalidInput)
	}

	listing, err := domain.NewListing(fields, owner.ID, urls)
	if err != nil {
		uc.discardImages(ctx, "", urls, domain.CleanupUploadRolledBack)
		return nil, err
	}
	if err := uc.listings.Create(ctx, listing); err != nil {
		uc.discardImages(ctx, "", urls, domain.CleanupUploadRolledBack)
		return nil, err
	}
	listing.Owner = owner.Ref()

	uc.metrics.ListingCreated()
	uc.publish(ctx, nats.SubjectListingCreated, listingEvent(listing))
	if uc.notifier != nil {
		if err := uc.notifier.SendListingCreated(owner.Email, owner.Username, listing.Title); err != nil {
			uc.logger.Warn("Listing created email not sent", zap.String("listing_id", listing.ID), zap.Error(err))
		}
	}

	uc.logger.Info("Listing created", zap.String("listing_id", listing.ID), zap.Int("images", len(urls)))
	return listing, nil
}

func (uc *ListingUsecase) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return []*domain.Listing{}, nil
	}
	return uc.listings.Find(ctx, filter)
}

// GetByID reads through the cache when one is configured.
func (uc *ListingUsecase) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			uc.logger.Warn("Listing cache read failed", zap.String("listing_id", id), zap.Error(err))
		}
	}

	listing, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, listing); err != nil {
			uc.logger.Warn("Listing cache write failed", zap.String("listing_id", id), zap.Error(err))
		}
	}
	return listing, nil
}

func (uc *ListingUsecase) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error) {
	return uc.listings.FindByOwner(ctx, ownerID)
}

// Update applies the provided fields and appends the uploaded images. Only
// the owner may update.
func (uc *ListingUsecase) Update(ctx context.Context, id, callerID string, fields domain.ListingFields, localPaths []string) (*domain.Listing, error) {
	listing, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !listing.IsOwnedBy(callerID) {
		return nil, fmt.Errorf("%w: You are not authorized to update this listing", domain.ErrForbidden)
	}

	// Reject bad fields before anything is uploaded.
	draft := *listing
	if err := draft.Apply(fields, nil); err != nil {
		return nil, err
	}

	var urls []string
	if len(localPaths) > 0 {
		urls = uc.storage.UploadBatch(ctx, localPaths)
		if len(urls) < len(localPaths) {
			uc.logger.Warn("Some image uploads failed", zap.String("listing_id", id),
				zap.Int("files", len(localPaths)), zap.Int("uploaded", len(urls)))
		}
	}

	if err := listing.Apply(fields, urls); err != nil {
		uc.discardImages(ctx, id, urls, domain.CleanupUploadRolledBack)
		return nil, err
	}
	if err := uc.listings.Update(ctx, listing, urls); err != nil {
		uc.discardImages(ctx, id, urls, domain.CleanupUploadRolledBack)
		return nil, err
	}

	uc.invalidate(ctx, id)
	uc.publish(ctx, nats.SubjectListingUpdated, listingEvent(listing))
	uc.logger.Info("Listing updated", zap.String("listing_id", id), zap.Int("new_images", len(urls)))
	return listing, nil
}

// Delete removes the listing, its images and its reviews. Only the owner
// may delete. Images that cannot be removed are queued for cleanup.
func (uc *ListingUsecase) Delete(ctx context.Context, id, callerID string) error {
	listing, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if !listing.IsOwnedBy(callerID) {
		return fmt.Errorf("%w: You are not authorized to delete this listing", domain.ErrForbidden)
	}

	uc.discardImages(ctx, id, listing.Images, domain.CleanupListingDeleted)

	if err := uc.listings.Delete(ctx, id); err != nil {
		return err
	}
	if n, err := uc.reviews.DeleteByListing(ctx, id); err != nil {
		uc.logger.Error("Failed to delete reviews of deleted listing", zap.String("listing_id", id), zap.Error(err))
	} else if n > 0 {
		uc.logger.Info("Deleted reviews of listing", zap.String("listing_id", id), zap.Int64("count", n))
	}

	uc.invalidate(ctx, id)
	uc.metrics.ListingDeleted()
	uc.publish(ctx, nats.SubjectListingDeleted, map[string]interface{}{
		"listing_id": id,
		"owner_id":   listing.OwnerID,
		"deleted_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	uc.logger.Info("Listing deleted", zap.String("listing_id", id))
	return nil
}

// RemoveImage detaches imageURL from the listing and deletes it from the
// store. A listing never drops below one image.
func (uc *ListingUsecase) RemoveImage(ctx context.Context, id, imageURL string) error {
	if imageURL == "" {
		return fmt.Errorf("%w: Image URL is required", domain.ErrInvalidInput)
	}

	listing, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if len(listing.Images) <= 1 {
		return fmt.Errorf("%w: At least one image is required", domain.ErrInvalidInput)
	}
	if !listing.HasImage(imageURL) {
		return fmt.Errorf("%w: Image not found", domain.ErrNotFound)
	}

	// The guarded pull runs first so a concurrent removal can never leave
	// the listing pointing at a deleted object.
	if err := uc.listings.RemoveImage(ctx, id, imageURL); err != nil {
		return err
	}
	uc.invalidate(ctx, id)

	if !uc.storage.Delete(ctx, imageURL) {
		uc.queueCleanup(ctx, id, imageURL, domain.CleanupImageRemoved)
	}
	uc.logger.Info("Listing image removed", zap.String("listing_id", id))
	return nil
}

var csvHeader = []string{"title", "price", "location", "owner.username", "owner.email", "createdAt"}

// ExportCSV renders the owner's listings as CSV.
func (uc *ListingUsecase) ExportCSV(ctx context.Context, ownerID string) ([]byte, error) {
	listings, err := uc.listings.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, fmt.Errorf("%w: No listings to export", domain.ErrNotFound)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, l := range listings {
		var username, email string
		if l.Owner != nil {
			username, email = l.Owner.Username, l.Owner.Email
		}
		row := []string{
			l.Title,
			strconv.FormatFloat(l.Price, 'f', -1, 64),
			l.Location,
			username,
			email,
			l.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (uc *ListingUsecase) load(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := uc.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: Listing not found", domain.ErrNotFound)
		}
		return nil, err
	}
	return listing, nil
}

// discardImages deletes urls from the store and queues the failures.
func (uc *ListingUsecase) discardImages(ctx context.Context, listingID string, urls []string, reason domain.CleanupReason) {
	if len(urls) == 0 {
		return
	}
	for _, url := range uc.storage.DeleteBatch(ctx, urls) {
		uc.queueCleanup(ctx, listingID, url, reason)
	}
}

func (uc *ListingUsecase) queueCleanup(ctx context.Context, listingID, url string, reason domain.CleanupReason) {
	record := domain.NewMediaCleanupRecord(url, listingID, reason)
	if err := uc.cleanup.Create(ctx, record); err != nil {
		uc.logger.Error("Failed to persist media cleanup record", zap.String("url", url), zap.Error(err))
		return
	}
	uc.metrics.MediaCleanup("queued", 1)
	uc.publish(ctx, nats.SubjectMediaCleanupRequested, map[string]interface{}{
		"id":         record.ID,
		"url":        url,
		"listing_id": listingID,
		"reason":     string(reason),
	})
}

func (uc *ListingUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, id); err != nil {
		uc.logger.Warn("Listing cache invalidation failed", zap.String("listing_id", id), zap.Error(err))
	}
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if err := uc.publisher.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func listingEvent(l *domain.Listing) map[string]interface{} {
	return map[string]interface{}{
		"listing_id": l.ID,
		"owner_id":   l.OwnerID,
		"title":      l.Title,
		"price":      l.Price,
		"category":   string(l.Category),
		"images":     len(l.Images),
		"updated_at": l.UpdatedAt.Format(time.RFC3339Nano),
	}
}
