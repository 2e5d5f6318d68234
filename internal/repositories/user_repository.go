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

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser inserts a new user; the unique email index rejects duplicates
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID().Hex()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Groups == nil {
		user.Groups = []string{}
	}
	if user.LikedPosts == nil {
		user.LikedPosts = []string{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return mongoError(err)
}

// GetUserByID retrieves a user by ID from MongoDB
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mongoError(err)
	}
	return &user, nil
}

// GetUsers retrieves all users, oldest first
func (r *MongoUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, mongoError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, mongoError(err)
	}
	return users, nil
}

// AddGroup adds groupID to the user's groups
func (r *MongoUserRepository) AddGroup(ctx context.Context, userID, groupID string) (bool, error) {
	return addToList(ctx, r.collection, userID, "groups", groupID)
}

// RemoveGroup removes groupID from the user's groups
func (r *MongoUserRepository) RemoveGroup(ctx context.Context, userID, groupID string) error {
	return pullFromList(ctx, r.collection, userID, "groups", groupID)
}

// AddLikedPost adds postID to the user's liked posts
func (r *MongoUserRepository) AddLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	return addToList(ctx, r.collection, userID, "liked_posts", postID)
}

// RemoveLikedPost removes postID from the user's liked posts
func (r *MongoUserRepository) RemoveLikedPost(ctx context.Context, userID, postID string) error {
	return pullFromList(ctx, r.collection, userID, "liked_posts", postID)
}
