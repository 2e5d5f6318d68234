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

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID().Hex()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.LikedBy == nil {
		post.LikedBy = []string{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return mongoError(err)
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, mongoError(err)
	}
	return &post, nil
}

// GetPosts retrieves the posts matching filter, newest first
func (r *MongoPostRepository) GetPosts(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	query := bson.M{}
	if filter.GroupID != "" {
		query["group"] = filter.GroupID
	}
	if filter.AuthorID != "" {
		query["author"] = filter.AuthorID
	}

	posts := []models.Post{}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, mongoError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, mongoError(err)
	}
	return posts, nil
}

// AddLike adds userID to the post's likers
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	return addToList(ctx, r.collection, postID, "liked_by", userID)
}

// RemoveLike removes userID from the post's likers
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	return pullFromList(ctx, r.collection, postID, "liked_by", userID)
}
