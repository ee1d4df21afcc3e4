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
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CleanupRepository stores remote image deletions that have to be retried.
type CleanupRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewCleanupRepository(db *mongo.Database, log *logger.Logger) *CleanupRepository {
	collection := db.Collection(cleanupCollection)

	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	index := mongo.IndexModel{Keys: bson.D{{Key: "attempts", Value: 1}, {Key: "updated_at", Value: 1}}}
	if _, err := collection.Indexes().CreateOne(ctx, index); err != nil {
		log.Warn("Failed to create index for media_cleanup collection", zap.Error(err))
	}

	return &CleanupRepository{
		collection: collection,
		logger:     log.Named("CleanupRepository"),
	}
}

func (r *CleanupRepository) Create(ctx context.Context, record *domain.MediaCleanupRecord) error {
	doc := &cleanupDocument{
		ID:        primitive.NewObjectID(),
		URL:       record.URL,
		ListingID: record.ListingID,
		Reason:    string(record.Reason),
		Attempts:  record.Attempts,
		LastError: record.LastError,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert cleanup record", zap.String("url", record.URL), zap.Error(err))
		return fmt.Errorf("%w: insert cleanup record: %v", domain.ErrRepository, err)
	}
	record.ID = doc.ID.Hex()
	return nil
}

// ListPending returns the oldest records that still have attempts left.
func (r *CleanupRepository) ListPending(ctx context.Context, maxAttempts, limit int) ([]*domain.MediaCleanupRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"attempts": bson.M{"$lt": maxAttempts}}, opts)
	if err != nil {
		r.logger.Error("Failed to list pending cleanup records", zap.Error(err))
		return nil, fmt.Errorf("%w: list cleanup records: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	var docs []*cleanupDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode cleanup records: %v", domain.ErrRepository, err)
	}

	records := make([]*domain.MediaCleanupRecord, len(docs))
	for i, doc := range docs {
		records[i] = doc.toDomain()
	}
	return records, nil
}

func (r *CleanupRepository) RecordFailure(ctx context.Context, id, reason string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrNotFound
	}
	update := bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"last_error": reason, "updated_at": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("%w: update cleanup record: %v", domain.ErrRepository, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CleanupRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrNotFound
	}
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("%w: delete cleanup record: %v", domain.ErrRepository, err)
	}
	return nil
}
