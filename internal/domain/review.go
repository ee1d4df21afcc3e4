package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a user's rating of a listing.
type Review struct {
	ID        string    `json:"_id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	OwnerID   string    `json:"-"`
	Owner     *UserRef  `json:"owner,omitempty"`
	ListingID string    `json:"listing"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewReview creates a new review instance. A zero rating counts as missing.
func NewReview(listingID, ownerID, comment string, rating int) (*Review, error) {
	now := time.Now().UTC()
	r := &Review{
		Comment:   comment,
		Rating:    rating,
		OwnerID:   ownerID,
		ListingID: listingID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate enforces presence of comment and rating and the rating bounds.
func (r *Review) Validate() error {
	if strings.TrimSpace(r.Comment) == "" || r.Rating == 0 {
		return fmt.Errorf("%w: All fields are required", ErrInvalidInput)
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, MinRating, MaxRating)
	}
	if r.ListingID == "" || r.OwnerID == "" {
		return fmt.Errorf("%w: listing and owner are required", ErrInvalidInput)
	}
	return nil
}

// CanBeDeletedBy reports whether userID may delete the review: its author
// or the owner of the reviewed listing.
func (r *Review) CanBeDeletedBy(userID string, listing *Listing) bool {
	if userID == "" {
		return false
	}
	if r.OwnerID == userID {
		return true
	}
	return listing != nil && listing.IsOwnedBy(userID)
}
