package repositories

import (
	"context"
	"errors"
	"net"

	"github.com/anonto42/social-hub/backend/internal/models"
)

var (
	// ErrNotFound is returned when an id does not resolve to a stored record
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field collides with an existing record
	ErrDuplicate = errors.New("record already exists")
	// ErrUnavailable is returned when the backend cannot be reached; callers may retry
	ErrUnavailable = errors.New("storage unavailable")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	// AddGroup appends groupID to the user's groups unless already present.
	// It reports whether the list changed.
	AddGroup(ctx context.Context, userID, groupID string) (bool, error)
	RemoveGroup(ctx context.Context, userID, groupID string) error
	// AddLikedPost appends postID to the user's liked posts unless already present.
	AddLikedPost(ctx context.Context, userID, postID string) (bool, error)
	RemoveLikedPost(ctx context.Context, userID, postID string) error
}

// GroupRepository defines the interface for group data operations
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id string) (*models.Group, error)
	GetGroups(ctx context.Context) ([]models.Group, error)
	// AddMember appends userID to the group's members unless already present.
	AddMember(ctx context.Context, groupID, userID string) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID string) error
}

// PostFilter narrows GetPosts. Zero value matches every post.
type PostFilter struct {
	GroupID  string
	AuthorID string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPosts(ctx context.Context, filter PostFilter) ([]models.Post, error)
	// AddLike appends userID to the post's likers unless already present.
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) error
}

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	// GetMessages returns the messages attached to target, oldest first
	GetMessages(ctx context.Context, kind models.MessageKind, target string) ([]models.Message, error)
}

// Store bundles the repositories of one backend
type Store struct {
	Users    UserRepository
	Groups   GroupRepository
	Posts    PostRepository
	Messages MessageRepository
}

// isUnavailable reports transport-level failures shared by every driver
func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
