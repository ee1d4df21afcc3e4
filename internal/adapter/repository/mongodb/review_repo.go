package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ReviewRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewReviewRepository(db *mongo.Database, log *logger.Logger) *ReviewRepository {
	collection := db.Collection(reviewsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn("Failed to create indexes for reviews collection (may already exist)", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for reviews collection")
	}

	return &ReviewRepository{
		collection: collection,
		logger:     log.Named("ReviewRepository"),
	}
}

// Create validates and inserts the review, filling in its ID.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	if review.CreatedAt.IsZero() {
		now := time.Now().UTC()
		review.CreatedAt = now
		review.UpdatedAt = now
	}

	doc, err := fromDomainReview(review)
	if err != nil {
		return fmt.Errorf("%w: malformed listing or owner id", err)
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert review", zap.String("listing_id", review.ListingID), zap.Error(err))
		return fmt.Errorf("%w: insert review: %v", domain.ErrRepository, err)
	}

	review.ID = doc.ID.Hex()
	r.logger.Info("Review created", zap.String("review_id", review.ID), zap.String("listing_id", review.ListingID))
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	reviews, err := r.aggregate(ctx, withOwner(bson.M{"_id": oid}))
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, domain.ErrNotFound
	}
	return reviews[0], nil
}

// FindByIDs keeps the order of ids, which is the order the listing
// references them in. Ids with no document are skipped.
func (r *ReviewRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Review, error) {
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return []*domain.Review{}, nil
	}

	found, err := r.aggregate(ctx, withOwner(bson.M{"_id": bson.M{"$in": oids}}))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Review, len(found))
	for _, review := range found {
		byID[review.ID] = review
	}
	ordered := make([]*domain.Review, 0, len(found))
	for _, id := range ids {
		if review, ok := byID[id]; ok {
			ordered = append(ordered, review)
		}
	}
	return ordered, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete review", zap.String("review_id", id), zap.Error(err))
		return fmt.Errorf("%w: delete review: %v", domain.ErrRepository, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("Review deleted", zap.String("review_id", id))
	return nil
}

func (r *ReviewRepository) DeleteByListing(ctx context.Context, listingID string) (int64, error) {
	oid, ok := parseID(listingID)
	if !ok {
		return 0, nil
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"listing": oid})
	if err != nil {
		r.logger.Error("Failed to delete listing reviews", zap.String("listing_id", listingID), zap.Error(err))
		return 0, fmt.Errorf("%w: delete reviews: %v", domain.ErrRepository, err)
	}
	return res.DeletedCount, nil
}

func (r *ReviewRepository) List(ctx context.Context) ([]*domain.Review, error) {
	return r.aggregate(ctx, withOwner(bson.M{}, newestFirst()))
}

func (r *ReviewRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%w: count reviews: %v", domain.ErrRepository, err)
	}
	return n, nil
}

func (r *ReviewRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*domain.Review, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate reviews", zap.Error(err))
		return nil, fmt.Errorf("%w: aggregate reviews: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	var docs []*reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode reviews: %v", domain.ErrRepository, err)
	}

	reviews := make([]*domain.Review, len(docs))
	for i, doc := range docs {
		reviews[i] = doc.toDomain()
	}
	return reviews, nil
}
