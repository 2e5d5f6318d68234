package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/social-hub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func updated(n int) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

func counted(ns string, n int) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func TestMongoGroupRepository_AddMember(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("adds when absent", func(mt *mtest.T) {
		mt.AddMockResponses(updated(1))

		added, err := NewMongoGroupRepository(mt.DB).AddMember(context.Background(), "g1", "u1")
		require.NoError(mt, err)
		assert.True(mt, added)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
		filter := started.Command.Lookup("updates", "0", "q")
		assert.Equal(mt, "g1", filter.Document().Lookup("_id").StringValue())
		assert.Equal(mt, "u1", filter.Document().Lookup("members", "$ne").StringValue())
	})

	mt.Run("already a member", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0), counted(mt.DB.Name()+".groups", 1))

		added, err := NewMongoGroupRepository(mt.DB).AddMember(context.Background(), "g1", "u1")
		require.NoError(mt, err)
		assert.False(mt, added)
	})

	mt.Run("missing group", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0), counted(mt.DB.Name()+".groups", 0))

		_, err := NewMongoGroupRepository(mt.DB).AddMember(context.Background(), "missing", "u1")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoUserRepository_AddLikedPost(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("adds when absent", func(mt *mtest.T) {
		mt.AddMockResponses(updated(1))

		added, err := NewMongoUserRepository(mt.DB).AddLikedPost(context.Background(), "u1", "p1")
		require.NoError(mt, err)
		assert.True(mt, added)
	})

	mt.Run("already liked", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0), counted(mt.DB.Name()+".users", 1))

		added, err := NewMongoUserRepository(mt.DB).AddLikedPost(context.Background(), "u1", "p1")
		require.NoError(mt, err)
		assert.False(mt, added)
	})

	mt.Run("missing user", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0), counted(mt.DB.Name()+".users", 0))

		_, err := NewMongoUserRepository(mt.DB).AddLikedPost(context.Background(), "missing", "p1")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("duplicate key on create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := NewMongoUserRepository(mt.DB).CreateUser(context.Background(), &models.User{Name: "Ada", Email: "ada@example.com"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})
}

func TestMongoPostRepository_RemoveLike(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("pulls from likers", func(mt *mtest.T) {
		mt.AddMockResponses(updated(1))
		require.NoError(mt, NewMongoPostRepository(mt.DB).RemoveLike(context.Background(), "p1", "u1"))
	})

	mt.Run("missing post", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0))
		assert.ErrorIs(mt, NewMongoPostRepository(mt.DB).RemoveLike(context.Background(), "missing", "u1"), ErrNotFound)
	})
}
