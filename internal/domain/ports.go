package domain

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by ListingCache.Get when nothing is cached.
var ErrCacheMiss = errors.New("cache miss")

// UploadResult describes a stored image.
type UploadResult struct {
	URL string `json:"url"`
}

// MediaStorage is the Media Uploader. Failures are logged and reported as
// nil/false, never as errors.
type MediaStorage interface {
	// Upload pushes the local file and always removes it afterwards.
	Upload(ctx context.Context, localPath string) *UploadResult
	// Delete removes the object behind url. It returns false on any failure.
	Delete(ctx context.Context, url string) bool
	// UploadBatch uploads concurrently and returns the stored URLs in input order.
	UploadBatch(ctx context.Context, localPaths []string) []string
	// DeleteBatch deletes concurrently and returns the URLs that could not be deleted.
	DeleteBatch(ctx context.Context, urls []string) []string
}

// EventPublisher emits domain events.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// ListingCache is a read-through cache for single listings.
type ListingCache interface {
	Get(ctx context.Context, id string) (*Listing, error)
	Set(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
}

// Notifier sends user-facing notifications.
type Notifier interface {
	SendListingCreated(toEmail, username, listingTitle string) error
}

// TokenManager is the Token Issuer/Verifier.
type TokenManager interface {
	Issue(userID string) (string, error)
	// Verify returns the user id carried by token, or ErrUnauthorized.
	Verify(token string) (string, error)
	TTL() time.Duration
}
