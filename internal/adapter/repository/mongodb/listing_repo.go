package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ListingRepository implements domain.ListingRepository using MongoDB.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewListingRepository creates the repository and ensures its indexes.
func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	collection := db.Collection(listingsCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for listings collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for listings collection")
	}

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("ListingRepository"),
	}
}

// Create inserts the listing and fills in ID and timestamps.
func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	doc, err := fromDomainListing(listing)
	if err != nil {
		return fmt.Errorf("%w: invalid owner id", err)
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert listing", zap.Error(err))
		return fmt.Errorf("%w: insert listing: %v", domain.ErrRepository, err)
	}

	listing.ID = doc.ID.Hex()
	r.logger.Info("Listing created", zap.String("listing_id", listing.ID), zap.String("owner_id", listing.OwnerID))
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	listings, err := r.aggregate(ctx, withOwner(bson.M{"_id": oid}))
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, domain.ErrNotFound
	}
	return listings[0], nil
}

// Find applies the optional search, category and price clauses.
func (r *ListingRepository) Find(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	r.logger.Debug("Finding listings", zap.Any("filter", filter))
	return r.aggregate(ctx, withOwner(buildListingQuery(filter), newestFirst()))
}

func (r *ListingRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error) {
	oid, ok := parseID(ownerID)
	if !ok {
		return []*domain.Listing{}, nil
	}
	return r.aggregate(ctx, withOwner(bson.M{"owner": oid}, newestFirst()))
}

func buildListingQuery(filter domain.ListingFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"location": pattern},
		}
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		query["price"] = price
	}
	return query
}

func newestFirst() bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}}
}

func (r *ListingRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*domain.Listing, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate listings", zap.Error(err))
		return nil, fmt.Errorf("%w: aggregate listings: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, fmt.Errorf("%w: decode listings: %v", domain.ErrRepository, err)
	}

	listings := make([]*domain.Listing, len(docs))
	for i, doc := range docs {
		listings[i] = doc.toDomain()
	}
	return listings, nil
}

// Update writes the editable scalar fields and appends newImages with
// $push, so concurrent image pulls and appends are never overwritten. The
// owner is part of the filter so a listing can never be rewritten under a
// different owner. On success listing.Images and listing.ReviewIDs hold the
// stored arrays.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing, newImages []string) error {
	doc, err := fromDomainListing(listing)
	if err != nil || doc.ID.IsZero() {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()

	set := bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"price":       doc.Price,
		"category":    doc.Category,
		"location":    doc.Location,
		"updatedAt":   now,
	}
	if doc.Geometry != nil {
		set["geometry"] = doc.Geometry
	}
	update := bson.M{"$set": set}
	if len(newImages) > 0 {
		update["$push"] = bson.M{"images": bson.M{"$each": newImages}}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var stored listingDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": doc.ID, "owner": doc.Owner}, update, opts).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrNotFound
		}
		r.logger.Error("Failed to update listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("%w: update listing: %v", domain.ErrRepository, err)
	}

	fresh := stored.toDomain()
	listing.Images = fresh.Images
	listing.ReviewIDs = fresh.ReviewIDs
	listing.UpdatedAt = now
	r.logger.Info("Listing updated", zap.String("listing_id", listing.ID), zap.Int("new_images", len(newImages)))
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		return fmt.Errorf("%w: delete listing: %v", domain.ErrRepository, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("Listing deleted", zap.String("listing_id", id))
	return nil
}

// RemoveImage pulls url in a single guarded update: the filter requires a
// second image to exist, so the list can never drop below one entry.
func (r *ListingRepository) RemoveImage(ctx context.Context, id, url string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrNotFound
	}
	filter := bson.M{
		"_id":      oid,
		"images":   url,
		"images.1": bson.M{"$exists": true},
	}
	update := bson.M{
		"$pull": bson.M{"images": url},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to remove listing image", zap.String("listing_id", id), zap.Error(err))
		return fmt.Errorf("%w: remove image: %v", domain.ErrRepository, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: At least one image is required", domain.ErrInvalidInput)
	}
	return nil
}

func (r *ListingRepository) PushReview(ctx context.Context, listingID, reviewID string) error {
	return r.updateReviews(ctx, listingID, reviewID, "$push")
}

func (r *ListingRepository) PullReview(ctx context.Context, listingID, reviewID string) error {
	return r.updateReviews(ctx, listingID, reviewID, "$pull")
}

func (r *ListingRepository) updateReviews(ctx context.Context, listingID, reviewID, op string) error {
	lid, ok := parseID(listingID)
	if !ok {
		return domain.ErrNotFound
	}
	rid, ok := parseID(reviewID)
	if !ok {
		return domain.ErrNotFound
	}

	filter := bson.M{"_id": lid}
	if op == "$pull" {
		filter["reviews"] = rid
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{op: bson.M{"reviews": rid}})
	if err != nil {
		r.logger.Error("Failed to update listing reviews",
			zap.String("op", op), zap.String("listing_id", listingID), zap.String("review_id", reviewID), zap.Error(err))
		return fmt.Errorf("%w: %s review: %v", domain.ErrRepository, op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%w: count listings: %v", domain.ErrRepository, err)
	}
	return n, nil
}

