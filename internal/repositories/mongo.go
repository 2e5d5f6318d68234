package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoStore builds the mongo repositories over db and ensures their indexes
func NewMongoStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	users := NewMongoUserRepository(db)
	groups := NewMongoGroupRepository(db)
	posts := NewMongoPostRepository(db)
	messages := NewMongoMessageRepository(db)

	indexes := []struct {
		collection *mongo.Collection
		models     []mongo.IndexModel
	}{
		{users.collection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{posts.collection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "group", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "created_at", Value: -1}}},
		}},
		{messages.collection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "target", Value: 1}, {Key: "created_at", Value: 1}}},
		}},
	}
	for _, idx := range indexes {
		if _, err := idx.collection.Indexes().CreateMany(ctx, idx.models); err != nil {
			return nil, fmt.Errorf("failed to create indexes on %s: %w", idx.collection.Name(), mongoError(err))
		}
	}

	return &Store{Users: users, Groups: groups, Posts: posts, Messages: messages}, nil
}

// mongoError maps driver errors onto the repository sentinels
func mongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err), errors.Is(err, mongo.ErrClientDisconnected), isUnavailable(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// addToList pushes value onto the array field of document id unless it is already there.
// The filter and the push are one atomic update, so concurrent callers cannot both append.
func addToList(ctx context.Context, coll *mongo.Collection, id, field, value string) (bool, error) {
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, field: bson.M{"$ne": value}},
		bson.M{
			"$push": bson.M{field: value},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, mongoError(err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	// No match: either the document is missing or value is already present
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, mongoError(err)
	}
	if n == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// pullFromList removes value from the array field of document id
func pullFromList(ctx context.Context, coll *mongo.Collection, id, field, value string) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{field: value}})
	if err != nil {
		return mongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
