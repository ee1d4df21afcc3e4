package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Category classifies a listing.
type Category string

const (
	CategoryRooms       Category = "rooms"
	CategoryBeachfront  Category = "beachfront"
	CategoryCabins      Category = "cabins"
	CategoryTrending    Category = "trending"
	CategoryCity        Category = "city"
	CategoryCountryside Category = "countryside"

	DefaultCategory = CategoryRooms

	// MaxListingImages bounds a single multipart create or update.
	MaxListingImages = 5
)

// IsValid checks if the Category is one of the defined constants.
func (c Category) IsValid() bool {
	switch c {
	case CategoryRooms, CategoryBeachfront, CategoryCabins, CategoryTrending, CategoryCity, CategoryCountryside:
		return true
	}
	return false
}

// ParseCategory maps an empty value to DefaultCategory and rejects unknown ones.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultCategory, nil
	}
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: Invalid category", ErrInvalidInput)
	}
	return c, nil
}

// Geometry is a GeoJSON point, coordinates are [lng, lat].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Listing is a property offered on the marketplace.
type Listing struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Images      []string  `json:"images"`
	Location    string    `json:"location"`
	Category    Category  `json:"category"`
	Geometry    *Geometry `json:"geometry,omitempty"`
	OwnerID     string    `json:"-"`
	Owner       *UserRef  `json:"owner,omitempty"`
	ReviewIDs   []string  `json:"reviews"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether userID owns the listing.
func (l *Listing) IsOwnedBy(userID string) bool {
	return l.OwnerID != "" && l.OwnerID == userID
}

// ListingFields is the user-editable part of a listing. Nil pointers mean
// "not provided".
type ListingFields struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	Location    *string
	Geometry    *Geometry
}

// ValidateForCreate checks the fields a new listing must carry, so callers
// can reject a request before uploading any image.
func (f ListingFields) ValidateForCreate() error {
	if f.Title == nil || strings.TrimSpace(*f.Title) == "" ||
		f.Price == nil ||
		f.Location == nil || strings.TrimSpace(*f.Location) == "" {
		return fmt.Errorf("%w: All fields are required", ErrInvalidInput)
	}
	if err := validatePrice(*f.Price); err != nil {
		return err
	}
	if f.Category != nil {
		if _, err := ParseCategory(*f.Category); err != nil {
			return err
		}
	}
	return nil
}

// validatePrice rejects negative and non-finite prices. NaN and Inf cannot
// be encoded as JSON.
func validatePrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return fmt.Errorf("%w: Price must be a number", ErrInvalidInput)
	}
	if p < 0 {
		return fmt.Errorf("%w: Price must not be negative", ErrInvalidInput)
	}
	return nil
}

// NewListing validates create input and returns an unsaved listing.
func NewListing(fields ListingFields, ownerID string, imageURLs []string) (*Listing, error) {
	if err := fields.ValidateForCreate(); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: Owner is Required", ErrInvalidInput)
	}
	if len(imageURLs) == 0 {
		return nil, fmt.Errorf("%w: At least one image is required", ErrInvalidInput)
	}

	var rawCategory string
	if fields.Category != nil {
		rawCategory = *fields.Category
	}
	category, err := ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}

	l := &Listing{
		Title:     strings.TrimSpace(*fields.Title),
		Price:     *fields.Price,
		Images:    append([]string(nil), imageURLs...),
		Location:  strings.TrimSpace(*fields.Location),
		Category:  category,
		Geometry:  fields.Geometry,
		OwnerID:   ownerID,
		ReviewIDs: []string{},
	}
	if fields.Description != nil {
		l.Description = *fields.Description
	}
	return l, nil
}

// Apply copies the provided fields onto the listing and appends newImages.
// The listing is left untouched when an error is returned.
func (l *Listing) Apply(fields ListingFields, newImages []string) error {
	next := *l

	if fields.Title != nil {
		if strings.TrimSpace(*fields.Title) == "" {
			return fmt.Errorf("%w: Title is Required", ErrInvalidInput)
		}
		next.Title = strings.TrimSpace(*fields.Title)
	}
	if fields.Description != nil {
		next.Description = *fields.Description
	}
	if fields.Price != nil {
		if err := validatePrice(*fields.Price); err != nil {
			return err
		}
		next.Price = *fields.Price
	}
	if fields.Location != nil {
		if strings.TrimSpace(*fields.Location) == "" {
			return fmt.Errorf("%w: Location is Required", ErrInvalidInput)
		}
		next.Location = strings.TrimSpace(*fields.Location)
	}
	if fields.Category != nil {
		c, err := ParseCategory(*fields.Category)
		if err != nil {
			return err
		}
		next.Category = c
	}
	if fields.Geometry != nil {
		next.Geometry = fields.Geometry
	}

	images := make([]string, 0, len(l.Images)+len(newImages))
	images = append(images, l.Images...)
	images = append(images, newImages...)
	if len(images) == 0 {
		return fmt.Errorf("%w: At least one image is required", ErrInvalidInput)
	}
	next.Images = images

	*l = next
	return nil
}

// ListingFilter holds the optional search clauses. Nil means "no clause".
type ListingFilter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// HasImage reports whether url is one of the listing's images.
func (l *Listing) HasImage(url string) bool {
	for _, img := range l.Images {
		if img == url {
			return true
		}
	}
	return false
}

// HasReview reports whether reviewID is referenced by the listing.
func (l *Listing) HasReview(reviewID string) bool {
	for _, id := range l.ReviewIDs {
		if id == reviewID {
			return true
		}
	}
	return false
}
