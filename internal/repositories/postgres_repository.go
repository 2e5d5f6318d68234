package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/social-hub/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Relations live in join tables keyed by both ids, so one row is both sides of
// a membership or like and the composite primary key makes inserts idempotent.

type userRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Email     string `gorm:"uniqueIndex"`
	Bio       string
	Avatar    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRecord) TableName() string { return "users" }

type groupRecord struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (groupRecord) TableName() string { return "groups" }

type membershipRecord struct {
	GroupID   string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

func (membershipRecord) TableName() string { return "group_members" }

type postRecord struct {
	ID        string `gorm:"primaryKey"`
	Content   string
	AuthorID  string `gorm:"index"`
	GroupID   string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (postRecord) TableName() string { return "posts" }

type likeRecord struct {
	PostID    string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

func (likeRecord) TableName() string { return "post_likes" }

type messageRecord struct {
	ID        string `gorm:"primaryKey"`
	Kind      string `gorm:"index:idx_messages_target"`
	TargetID  string `gorm:"index:idx_messages_target"`
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

func (messageRecord) TableName() string { return "messages" }

// PostgresRepository implements every repository interface on PostgreSQL through GORM
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a new PostgresRepository
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// NewPostgresStore migrates the schema and wraps a PostgresRepository as a Store
func NewPostgresStore(db *gorm.DB) (*Store, error) {
	err := db.AutoMigrate(
		&userRecord{},
		&groupRecord{},
		&membershipRecord{},
		&postRecord{},
		&likeRecord{},
		&messageRecord{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to auto migrate models: %w", pgError(err))
	}
	r := NewPostgresRepository(db)
	return &Store{Users: r, Groups: r, Posts: r, Messages: r}, nil
}

// pgError maps GORM errors onto the repository sentinels.
// Duplicate detection relies on gorm.Config.TranslateError.
func pgError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, driver.ErrBadConn), isUnavailable(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (r *PostgresRepository) exists(ctx context.Context, model any, id string) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return pgError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// insertIgnore inserts row unless its primary key already exists and reports whether it did
func (r *PostgresRepository) insertIgnore(ctx context.Context, row any) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, pgError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

type relationPair struct {
	Owner string
	Ref   string
}

// relations returns ownerCol -> []refCol for the given owners, oldest link first
func (r *PostgresRepository) relations(ctx context.Context, model any, ownerCol, refCol string, owners []string) (map[string][]string, error) {
	out := make(map[string][]string, len(owners))
	for _, id := range owners {
		out[id] = []string{}
	}
	if len(owners) == 0 {
		return out, nil
	}
	var pairs []relationPair
	err := r.db.WithContext(ctx).Model(model).
		Select(ownerCol+" AS owner, "+refCol+" AS ref").
		Where(ownerCol+" IN ?", owners).
		Order("created_at ASC").
		Scan(&pairs).Error
	if err != nil {
		return nil, pgError(err)
	}
	for _, p := range pairs {
		out[p.Owner] = append(out[p.Owner], p.Ref)
	}
	return out, nil
}

func (r *PostgresRepository) toUsers(ctx context.Context, recs []userRecord) ([]models.User, error) {
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	groups, err := r.relations(ctx, &membershipRecord{}, "user_id", "group_id", ids)
	if err != nil {
		return nil, err
	}
	likes, err := r.relations(ctx, &likeRecord{}, "user_id", "post_id", ids)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, len(recs))
	for i, rec := range recs {
		users[i] = models.User{
			ID:         rec.ID,
			Name:       rec.Name,
			Email:      rec.Email,
			Profile:    models.Profile{Bio: rec.Bio, Avatar: rec.Avatar},
			Groups:     groups[rec.ID],
			LikedPosts: likes[rec.ID],
			CreatedAt:  rec.CreatedAt,
			UpdatedAt:  rec.UpdatedAt,
		}
	}
	return users, nil
}

func (r *PostgresRepository) toGroups(ctx context.Context, recs []groupRecord) ([]models.Group, error) {
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	members, err := r.relations(ctx, &membershipRecord{}, "group_id", "user_id", ids)
	if err != nil {
		return nil, err
	}
	groups := make([]models.Group, len(recs))
	for i, rec := range recs {
		groups[i] = models.Group{
			ID:          rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Members:     members[rec.ID],
			CreatedAt:   rec.CreatedAt,
			UpdatedAt:   rec.UpdatedAt,
		}
	}
	return groups, nil
}

func (r *PostgresRepository) toPosts(ctx context.Context, recs []postRecord) ([]models.Post, error) {
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	likers, err := r.relations(ctx, &likeRecord{}, "post_id", "user_id", ids)
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, len(recs))
	for i, rec := range recs {
		posts[i] = models.Post{
			ID:        rec.ID,
			Content:   rec.Content,
			Author:    rec.AuthorID,
			Group:     rec.GroupID,
			LikedBy:   likers[rec.ID],
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		}
	}
	return posts, nil
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	rec := userRecord{
		ID:     uuid.NewString(),
		Name:   user.Name,
		Email:  user.Email,
		Bio:    user.Profile.Bio,
		Avatar: user.Profile.Avatar,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return pgError(err)
	}
	user.ID = rec.ID
	user.CreatedAt = rec.CreatedAt
	user.UpdatedAt = rec.UpdatedAt
	user.Groups = []string{}
	user.LikedPosts = []string{}
	return nil
}

// GetUserByID retrieves a user and its relations by ID
func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, pgError(err)
	}
	users, err := r.toUsers(ctx, []userRecord{rec})
	if err != nil {
		return nil, err
	}
	return &users[0], nil
}

// GetUsers retrieves all users, oldest first
func (r *PostgresRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, pgError(err)
	}
	return r.toUsers(ctx, recs)
}

// AddGroup links the user to the group; the link row is shared with AddMember
func (r *PostgresRepository) AddGroup(ctx context.Context, userID, groupID string) (bool, error) {
	if err := r.exists(ctx, &userRecord{}, userID); err != nil {
		return false, err
	}
	return r.insertIgnore(ctx, &membershipRecord{GroupID: groupID, UserID: userID})
}

// RemoveGroup deletes the membership link
func (r *PostgresRepository) RemoveGroup(ctx context.Context, userID, groupID string) error {
	return r.RemoveMember(ctx, groupID, userID)
}

// AddLikedPost links the user to the post; the link row is shared with AddLike
func (r *PostgresRepository) AddLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	if err := r.exists(ctx, &userRecord{}, userID); err != nil {
		return false, err
	}
	return r.insertIgnore(ctx, &likeRecord{PostID: postID, UserID: userID})
}

// RemoveLikedPost deletes the like link
func (r *PostgresRepository) RemoveLikedPost(ctx context.Context, userID, postID string) error {
	return r.RemoveLike(ctx, postID, userID)
}

// CreateGroup creates a new group in PostgreSQL
func (r *PostgresRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	rec := groupRecord{ID: uuid.NewString(), Name: group.Name, Description: group.Description}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return pgError(err)
	}
	group.ID = rec.ID
	group.CreatedAt = rec.CreatedAt
	group.UpdatedAt = rec.UpdatedAt
	group.Members = []string{}
	return nil
}

// GetGroupByID retrieves a group and its members by ID
func (r *PostgresRepository) GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	var rec groupRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, pgError(err)
	}
	groups, err := r.toGroups(ctx, []groupRecord{rec})
	if err != nil {
		return nil, err
	}
	return &groups[0], nil
}

// GetGroups retrieves all groups, oldest first
func (r *PostgresRepository) GetGroups(ctx context.Context) ([]models.Group, error) {
	var recs []groupRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, pgError(err)
	}
	return r.toGroups(ctx, recs)
}

// AddMember links the user to the group
func (r *PostgresRepository) AddMember(ctx context.Context, groupID, userID string) (bool, error) {
	if err := r.exists(ctx, &groupRecord{}, groupID); err != nil {
		return false, err
	}
	return r.insertIgnore(ctx, &membershipRecord{GroupID: groupID, UserID: userID})
}

// RemoveMember deletes the membership link
func (r *PostgresRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&membershipRecord{}).Error
	return pgError(err)
}

// CreatePost creates a new post in PostgreSQL
func (r *PostgresRepository) CreatePost(ctx context.Context, post *models.Post) error {
	rec := postRecord{ID: uuid.NewString(), Content: post.Content, AuthorID: post.Author, GroupID: post.Group}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return pgError(err)
	}
	post.ID = rec.ID
	post.CreatedAt = rec.CreatedAt
	post.UpdatedAt = rec.UpdatedAt
	post.LikedBy = []string{}
	return nil
}

// GetPostByID retrieves a post and its likers by ID
func (r *PostgresRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var rec postRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, pgError(err)
	}
	posts, err := r.toPosts(ctx, []postRecord{rec})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// GetPosts retrieves the posts matching filter, newest first
func (r *PostgresRepository) GetPosts(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.GroupID != "" {
		q = q.Where("group_id = ?", filter.GroupID)
	}
	if filter.AuthorID != "" {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	var recs []postRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, pgError(err)
	}
	return r.toPosts(ctx, recs)
}

// AddLike links the user to the post
func (r *PostgresRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	if err := r.exists(ctx, &postRecord{}, postID); err != nil {
		return false, err
	}
	return r.insertIgnore(ctx, &likeRecord{PostID: postID, UserID: userID})
}

// RemoveLike deletes the like link
func (r *PostgresRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&likeRecord{}).Error
	return pgError(err)
}

// CreateMessage creates a new message in PostgreSQL
func (r *PostgresRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	rec := messageRecord{
		ID:       uuid.NewString(),
		Kind:     string(message.Kind),
		TargetID: message.Target,
		AuthorID: message.Author,
		Content:  message.Content,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return pgError(err)
	}
	message.ID = rec.ID
	message.CreatedAt = rec.CreatedAt
	return nil
}

// GetMessages retrieves the messages of target sorted by creation time
func (r *PostgresRepository) GetMessages(ctx context.Context, kind models.MessageKind, target string) ([]models.Message, error) {
	var recs []messageRecord
	err := r.db.WithContext(ctx).
		Where("kind = ? AND target_id = ?", string(kind), target).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, pgError(err)
	}
	messages := make([]models.Message, len(recs))
	for i, rec := range recs {
		messages[i] = models.Message{
			ID:        rec.ID,
			Kind:      models.MessageKind(rec.Kind),
			Target:    rec.TargetID,
			Author:    rec.AuthorID,
			Content:   rec.Content,
			CreatedAt: rec.CreatedAt,
		}
	}
	return messages, nil
}
