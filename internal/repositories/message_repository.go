package repositories

import (
	"context"
	"time"

	"github.com/anonto42/social-hub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

// CreateMessage inserts a new message
func (r *MongoMessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID().Hex()
	message.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, message)
	return mongoError(err)
}

// GetMessages retrieves the messages of target sorted by creation time
func (r *MongoMessageRepository) GetMessages(ctx context.Context, kind models.MessageKind, target string) ([]models.Message, error) {
	messages := []models.Message{}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"kind": kind, "target": target}, findOptions)
	if err != nil {
		return nil, mongoError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &messages); err != nil {
		return nil, mongoError(err)
	}
	return messages, nil
}
