package domain

import "context"

// UserRepository is the Credential Store's persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ExistsByUsernameOrEmail reports whether either value is already taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	List(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int64, error)
}

// ListingRepository persists listings. Read methods populate Owner.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id string) (*Listing, error)
	Find(ctx context.Context, filter ListingFilter) ([]*Listing, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*Listing, error)
	// Update writes the editable scalar fields and atomically appends
	// newImages. The image list is never overwritten, and listing.Images is
	// refreshed from the stored document.
	Update(ctx context.Context, listing *Listing, newImages []string) error
	Delete(ctx context.Context, id string) error
	// RemoveImage pulls url only while the listing keeps at least one other
	// image. It returns ErrInvalidInput when that guard fails.
	RemoveImage(ctx context.Context, id, url string) error
	PushReview(ctx context.Context, listingID, reviewID string) error
	// PullReview returns ErrNotFound when reviewID is not referenced by the listing.
	PullReview(ctx context.Context, listingID, reviewID string) error
	Count(ctx context.Context) (int64, error)
}

// ReviewRepository persists reviews. Read methods populate Owner.Username.
type ReviewRepository interface {
	// Create rejects reviews failing Review.Validate.
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	// FindByIDs returns the reviews in the order of ids, skipping missing ones.
	FindByIDs(ctx context.Context, ids []string) ([]*Review, error)
	Delete(ctx context.Context, id string) error
	DeleteByListing(ctx context.Context, listingID string) (int64, error)
	List(ctx context.Context) ([]*Review, error)
	Count(ctx context.Context) (int64, error)
}

// CleanupRepository stores retriable media deletions.
type CleanupRepository interface {
	Create(ctx context.Context, record *MediaCleanupRecord) error
	ListPending(ctx context.Context, maxAttempts, limit int) ([]*MediaCleanupRecord, error)
	RecordFailure(ctx context.Context, id, reason string) error
	Delete(ctx context.Context, id string) error
}
