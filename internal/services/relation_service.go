package services

import (
	"context"
	"strings"

	"github.com/anonto42/social-hub/backend/internal/models"
	"github.com/anonto42/social-hub/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// Names of the events published after successful mutations
const (
	EventUserCreated  = "userCreated"
	EventGroupCreated = "groupCreated"
	EventGroupUpdated = "groupUpdated"
	EventPostCreated  = "postCreated"
	EventPostLiked    = "postLiked"
	EventCommentAdded = "commentAdded"
	EventNewMessage   = "newMessage"
)

// Publisher receives every committed change. Implemented by realtime.Hub.
type Publisher interface {
	Broadcast(event string, payload any)
}

// Validator checks struct tags. Implemented by validators.Validator.
type Validator interface {
	Validate(i interface{}) error
}

// RelationService applies validated, idempotent mutations to users, groups,
// posts and messages and publishes what changed.
type RelationService struct {
	users     repositories.UserRepository
	groups    repositories.GroupRepository
	posts     repositories.PostRepository
	messages  repositories.MessageRepository
	publisher Publisher
	validator Validator
	pairs     pairLocks
	log       zerolog.Logger
}

// NewRelationService creates a RelationService over store
func NewRelationService(store *repositories.Store, publisher Publisher, validator Validator, logger zerolog.Logger) *RelationService {
	return &RelationService{
		users:     store.Users,
		groups:    store.Groups,
		posts:     store.Posts,
		messages:  store.Messages,
		publisher: publisher,
		validator: validator,
		log:       logger.With().Str("component", "relations").Logger(),
	}
}

func (s *RelationService) publish(event string, payload any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Broadcast(event, payload)
}

func (s *RelationService) validate(req interface{}) error {
	if err := s.validator.Validate(req); err != nil {
		return validationError(err)
	}
	return nil
}

// CreateUser registers a user. Emails are compared case-insensitively.
func (s *RelationService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate(req); err != nil {
		return nil, err
	}

	user := &models.User{Name: req.Name, Email: req.Email, Profile: req.Profile}
	if err := s.validate(user); err != nil {
		return nil, err
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, storeError(err, "user")
	}

	s.log.Info().Str("user", user.ID).Msg("user created")
	s.publish(EventUserCreated, user)
	return user, nil
}

// GetUser returns the user with id
func (s *RelationService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	return user, storeError(err, "user")
}

// ListUsers returns every user
func (s *RelationService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.GetUsers(ctx)
	return users, storeError(err, "")
}

// CreateGroup creates an empty group
func (s *RelationService) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (*models.Group, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	group := &models.Group{Name: req.Name, Description: req.Description}
	if err := s.validate(group); err != nil {
		return nil, err
	}
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		return nil, storeError(err, "group")
	}

	s.log.Info().Str("group", group.ID).Msg("group created")
	s.publish(EventGroupCreated, group)
	return group, nil
}

// GetGroup returns the group with id
func (s *RelationService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.groups.GetGroupByID(ctx, id)
	return group, storeError(err, "group")
}

// ListGroups returns every group
func (s *RelationService) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.groups.GetGroups(ctx)
	return groups, storeError(err, "")
}

// JoinGroup adds the user to the group and the group to the user. Both sides
// are checked before either is written, each write is a conditional add,
// and a failed second write undoes the first. Calls for the same pair are
// serialized around the writes.
func (s *RelationService) JoinGroup(ctx context.Context, userID, groupID string) (*models.Membership, error) {
	if err := s.validate(models.JoinGroupRequest{UserID: userID}); err != nil {
		return nil, err
	}
	if _, err := s.groups.GetGroupByID(ctx, groupID); err != nil {
		return nil, storeError(err, "group")
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, storeError(err, "user")
	}

	added, err := s.joinWrites(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	membership, err := s.membership(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("group", groupID).Str("user", userID).Bool("changed", added).Msg("user joined group")
	s.publish(EventGroupUpdated, membership.Group)
	return membership, nil
}

// joinWrites adds both sides of a membership while holding the pair lock
func (s *RelationService) joinWrites(ctx context.Context, userID, groupID string) (bool, error) {
	unlock := s.pairs.lock("group:"+groupID, userID)
	defer unlock()

	added, err := s.groups.AddMember(ctx, groupID, userID)
	if err != nil {
		return false, storeError(err, "group")
	}
	if _, err := s.users.AddGroup(ctx, userID, groupID); err != nil {
		if added {
			if rerr := s.groups.RemoveMember(ctx, groupID, userID); rerr != nil {
				s.log.Error().Err(rerr).Str("group", groupID).Str("user", userID).Msg("failed to undo membership")
			}
		}
		return false, storeError(err, "user")
	}
	return added, nil
}

func (s *RelationService) membership(ctx context.Context, userID, groupID string) (*models.Membership, error) {
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "group")
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return &models.Membership{Group: group, User: user}, nil
}

// CreatePost publishes a post by an existing author, optionally into an existing group
func (s *RelationService) CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.Post, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if _, err := s.users.GetUserByID(ctx, req.Author); err != nil {
		return nil, storeError(err, "author")
	}
	if req.Group != "" {
		if _, err := s.groups.GetGroupByID(ctx, req.Group); err != nil {
			return nil, storeError(err, "group")
		}
	}

	post := &models.Post{Content: req.Content, Author: req.Author, Group: req.Group}
	if err := s.validate(post); err != nil {
		return nil, err
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, storeError(err, "post")
	}

	s.log.Info().Str("post", post.ID).Str("author", post.Author).Msg("post created")
	s.publish(EventPostCreated, post)
	return post, nil
}

// GetPost returns the post with id
func (s *RelationService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	return post, storeError(err, "post")
}

// ListPosts returns posts, newest first, optionally limited to one group
func (s *RelationService) ListPosts(ctx context.Context, filter repositories.PostFilter) ([]models.Post, error) {
	posts, err := s.posts.GetPosts(ctx, filter)
	return posts, storeError(err, "")
}

// LikePost records that the user likes the post on both sides, idempotently
func (s *RelationService) LikePost(ctx context.Context, userID, postID string) (*models.PostLike, error) {
	if err := s.validate(models.LikePostRequest{UserID: userID}); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, storeError(err, "post")
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, storeError(err, "user")
	}

	added, err := s.likeWrites(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storeError(err, "post")
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	s.log.Info().Str("post", postID).Str("user", userID).Bool("changed", added).Msg("post liked")
	s.publish(EventPostLiked, post)
	return &models.PostLike{Post: post, User: user}, nil
}

// likeWrites adds both sides of a like while holding the pair lock
func (s *RelationService) likeWrites(ctx context.Context, userID, postID string) (bool, error) {
	unlock := s.pairs.lock("post:"+postID, userID)
	defer unlock()

	added, err := s.posts.AddLike(ctx, postID, userID)
	if err != nil {
		return false, storeError(err, "post")
	}
	if _, err := s.users.AddLikedPost(ctx, userID, postID); err != nil {
		if added {
			if rerr := s.posts.RemoveLike(ctx, postID, userID); rerr != nil {
				s.log.Error().Err(rerr).Str("post", postID).Str("user", userID).Msg("failed to undo like")
			}
		}
		return false, storeError(err, "user")
	}
	return added, nil
}

// CreateMessage attaches a message to a post (comment) or a group (chat message).
// Author and target must exist.
func (s *RelationService) CreateMessage(ctx context.Context, req models.CreateMessageRequest) (*models.Message, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	event := EventNewMessage
	switch req.Kind {
	case models.MessageKindComment:
		event = EventCommentAdded
		if _, err := s.posts.GetPostByID(ctx, req.Target); err != nil {
			return nil, storeError(err, "post")
		}
	case models.MessageKindGroup:
		if _, err := s.groups.GetGroupByID(ctx, req.Target); err != nil {
			return nil, storeError(err, "group")
		}
	}
	if _, err := s.users.GetUserByID(ctx, req.Author); err != nil {
		return nil, storeError(err, "user")
	}

	message := &models.Message{Kind: req.Kind, Target: req.Target, Author: req.Author, Content: req.Content}
	if err := s.messages.CreateMessage(ctx, message); err != nil {
		return nil, storeError(err, "message")
	}

	s.log.Info().Str("message", message.ID).Str("kind", string(message.Kind)).Str("target", message.Target).Msg("message created")
	s.publish(event, message)
	return message, nil
}

// ListMessages returns the messages of a post or group, oldest first
func (s *RelationService) ListMessages(ctx context.Context, kind models.MessageKind, target string) ([]models.Message, error) {
	if !kind.Valid() {
		return nil, validationError(nil)
	}
	switch kind {
	case models.MessageKindComment:
		if _, err := s.posts.GetPostByID(ctx, target); err != nil {
			return nil, storeError(err, "post")
		}
	case models.MessageKindGroup:
		if _, err := s.groups.GetGroupByID(ctx, target); err != nil {
			return nil, storeError(err, "group")
		}
	}
	messages, err := s.messages.GetMessages(ctx, kind, target)
	return messages, storeError(err, "")
}
