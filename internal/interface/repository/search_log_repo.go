package repository

import (
	"context"
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSearchLogRepository implements SearchLogRepository
type MongoSearchLogRepository struct {
	collection *mongo.Collection
}

// NewMongoSearchLogRepository creates a new search log repository
func NewMongoSearchLogRepository(db *mongo.Database) repository.SearchLogRepository {
	collection := db.Collection("search_logs")

	// Index on requestId for lookups, createdAt for retention queries
	ctx := context.Background()
	requestIndex := mongo.IndexModel{
		Keys:    bson.M{"requestId": 1},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, requestIndex)

	createdIndex := mongo.IndexModel{
		Keys: bson.M{"createdAt": 1},
	}
	collection.Indexes().CreateOne(ctx, createdIndex)

	return &MongoSearchLogRepository{
		collection: collection,
	}
}

// Insert stores one search audit record
func (r *MongoSearchLogRepository) Insert(ctx context.Context, log *entity.SearchLog) error {
	if log.ID == "" {
		log.ID = primitive.NewObjectID().Hex()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, log)
	return err
}
