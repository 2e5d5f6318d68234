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

// MongoGroupRepository implements GroupRepository for MongoDB
type MongoGroupRepository struct {
	collection *mongo.Collection
}

// NewMongoGroupRepository creates a new MongoGroupRepository
func NewMongoGroupRepository(db *mongo.Database) *MongoGroupRepository {
	return &MongoGroupRepository{collection: db.Collection("groups")}
}

// CreateGroup inserts a new group
func (r *MongoGroupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	group.ID = primitive.NewObjectID().Hex()
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt
	if group.Members == nil {
		group.Members = []string{}
	}
	_, err := r.collection.InsertOne(ctx, group)
	return mongoError(err)
}

// GetGroupByID retrieves a group by ID from MongoDB
func (r *MongoGroupRepository) GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group); err != nil {
		return nil, mongoError(err)
	}
	return &group, nil
}

// GetGroups retrieves all groups, oldest first
func (r *MongoGroupRepository) GetGroups(ctx context.Context) ([]models.Group, error) {
	groups := []models.Group{}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, mongoError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &groups); err != nil {
		return nil, mongoError(err)
	}
	return groups, nil
}

// AddMember adds userID to the group's members
func (r *MongoGroupRepository) AddMember(ctx context.Context, groupID, userID string) (bool, error) {
	return addToList(ctx, r.collection, groupID, "members", userID)
}

// RemoveMember removes userID from the group's members
func (r *MongoGroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	return pullFromList(ctx, r.collection, groupID, "members", userID)
}
