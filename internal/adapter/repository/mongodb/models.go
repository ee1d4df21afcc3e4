package mongodb

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Admin     bool               `bson:"admin"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		Admin:        d.Admin,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ownerDocument is the $lookup projection of a user.
type ownerDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	Email    string             `bson:"email,omitempty"`
}

func (d *ownerDocument) toDomain() *domain.UserRef {
	if d == nil {
		return nil
	}
	return &domain.UserRef{ID: d.ID.Hex(), Username: d.Username, Email: d.Email}
}

type geometryDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type listingDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Description string               `bson:"description,omitempty"`
	Price       float64              `bson:"price"`
	Images      []string             `bson:"images"`
	Location    string               `bson:"location"`
	Category    string               `bson:"category"`
	Geometry    *geometryDocument    `bson:"geometry,omitempty"`
	Owner       primitive.ObjectID   `bson:"owner"`
	Reviews     []primitive.ObjectID `bson:"reviews"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`

	// Populated by the owner $lookup stage, never written.
	OwnerRef *ownerDocument `bson:"ownerRef,omitempty"`
}

func fromDomainListing(l *domain.Listing) (*listingDocument, error) {
	owner, ok := parseID(l.OwnerID)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	doc := &listingDocument{
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Images:      l.Images,
		Location:    l.Location,
		Category:    string(l.Category),
		Owner:       owner,
		Reviews:     parseIDs(l.ReviewIDs),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.ID != "" {
		id, ok := parseID(l.ID)
		if !ok {
			return nil, domain.ErrInvalidInput
		}
		doc.ID = id
	}
	if doc.Images == nil {
		doc.Images = []string{}
	}
	if l.Geometry != nil {
		doc.Geometry = &geometryDocument{Type: "Point", Coordinates: l.Geometry.Coordinates}
	}
	return doc, nil
}

func (d *listingDocument) toDomain() *domain.Listing {
	l := &domain.Listing{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Images:      d.Images,
		Location:    d.Location,
		Category:    domain.Category(d.Category),
		OwnerID:     d.Owner.Hex(),
		Owner:       d.OwnerRef.toDomain(),
		ReviewIDs:   hexIDs(d.Reviews),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	if d.Geometry != nil {
		l.Geometry = &domain.Geometry{Type: d.Geometry.Type, Coordinates: d.Geometry.Coordinates}
	}
	return l
}

type reviewDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Comment   string             `bson:"comment"`
	Rating    int                `bson:"rating"`
	Owner     primitive.ObjectID `bson:"owner"`
	Listing   primitive.ObjectID `bson:"listing"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`

	OwnerRef *ownerDocument `bson:"ownerRef,omitempty"`
}

func fromDomainReview(r *domain.Review) (*reviewDocument, error) {
	owner, ok := parseID(r.OwnerID)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	listing, ok := parseID(r.ListingID)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	return &reviewDocument{
		Comment:   r.Comment,
		Rating:    r.Rating,
		Owner:     owner,
		Listing:   listing,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func (d *reviewDocument) toDomain() *domain.Review {
	r := &domain.Review{
		ID:        d.ID.Hex(),
		Comment:   d.Comment,
		Rating:    d.Rating,
		OwnerID:   d.Owner.Hex(),
		ListingID: d.Listing.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.OwnerRef != nil {
		// Reviews expose only the author's username.
		r.Owner = &domain.UserRef{ID: d.OwnerRef.ID.Hex(), Username: d.OwnerRef.Username}
	}
	return r
}

type cleanupDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	URL       string             `bson:"url"`
	ListingID string             `bson:"listing_id"`
	Reason    string             `bson:"reason"`
	Attempts  int                `bson:"attempts"`
	LastError string             `bson:"last_error,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *cleanupDocument) toDomain() *domain.MediaCleanupRecord {
	return &domain.MediaCleanupRecord{
		ID:        d.ID.Hex(),
		URL:       d.URL,
		ListingID: d.ListingID,
		Reason:    domain.CleanupReason(d.Reason),
		Attempts:  d.Attempts,
		LastError: d.LastError,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
