package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/social-hub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository keeps every entity in process memory. It implements all four
// repository interfaces; one mutex makes each read-check-append atomic.
type MemoryRepository struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	emails   map[string]string
	groups   map[string]*models.Group
	posts    map[string]*models.Post
	messages []models.Message
	now      func() time.Time
}

// NewMemoryRepository creates an empty MemoryRepository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:  make(map[string]*models.User),
		emails: make(map[string]string),
		groups: make(map[string]*models.Group),
		posts:  make(map[string]*models.Post),
		now:    time.Now,
	}
}

// NewMemoryStore wraps a fresh MemoryRepository as a Store
func NewMemoryStore() *Store {
	r := NewMemoryRepository()
	return &Store{Users: r, Groups: r, Posts: r, Messages: r}
}

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Groups = cloneIDs(u.Groups)
	c.LikedPosts = cloneIDs(u.LikedPosts)
	return &c
}

func cloneGroup(g *models.Group) *models.Group {
	c := *g
	c.Members = cloneIDs(g.Members)
	return &c
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.LikedBy = cloneIDs(p.LikedBy)
	return &c
}

// CreateUser stores a new user, rejecting a taken email
func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.emails[user.Email]; taken {
		return ErrDuplicate
	}
	user.ID = primitive.NewObjectID().Hex()
	user.CreatedAt = r.now()
	user.UpdatedAt = user.CreatedAt
	if user.Groups == nil {
		user.Groups = []string{}
	}
	if user.LikedPosts == nil {
		user.LikedPosts = []string{}
	}
	r.users[user.ID] = cloneUser(user)
	r.emails[user.Email] = user.ID
	return nil
}

// GetUserByID returns a copy of the user
func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

// GetUsers returns every user in creation order
func (r *MemoryRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// AddGroup appends groupID to the user's groups if absent
func (r *MemoryRepository) AddGroup(ctx context.Context, userID, groupID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return false, ErrNotFound
	}
	if containsID(u.Groups, groupID) {
		return false, nil
	}
	u.Groups = append(u.Groups, groupID)
	u.UpdatedAt = r.now()
	return true, nil
}

// RemoveGroup drops groupID from the user's groups
func (r *MemoryRepository) RemoveGroup(ctx context.Context, userID, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Groups = removeID(u.Groups, groupID)
	return nil
}

// AddLikedPost appends postID to the user's liked posts if absent
func (r *MemoryRepository) AddLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return false, ErrNotFound
	}
	if containsID(u.LikedPosts, postID) {
		return false, nil
	}
	u.LikedPosts = append(u.LikedPosts, postID)
	u.UpdatedAt = r.now()
	return true, nil
}

// RemoveLikedPost drops postID from the user's liked posts
func (r *MemoryRepository) RemoveLikedPost(ctx context.Context, userID, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.LikedPosts = removeID(u.LikedPosts, postID)
	return nil
}

// CreateGroup stores a new group
func (r *MemoryRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	group.ID = primitive.NewObjectID().Hex()
	group.CreatedAt = r.now()
	group.UpdatedAt = group.CreatedAt
	if group.Members == nil {
		group.Members = []string{}
	}
	r.groups[group.ID] = cloneGroup(group)
	return nil
}

// GetGroupByID returns a copy of the group
func (r *MemoryRepository) GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneGroup(g), nil
}

// GetGroups returns every group in creation order
func (r *MemoryRepository) GetGroups(ctx context.Context) ([]models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	groups := make([]models.Group, 0, len(r.groups))
	for _, g := range r.groups {
		groups = append(groups, *cloneGroup(g))
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

// AddMember appends userID to the group's members if absent
func (r *MemoryRepository) AddMember(ctx context.Context, groupID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[groupID]
	if !ok {
		return false, ErrNotFound
	}
	if containsID(g.Members, userID) {
		return false, nil
	}
	g.Members = append(g.Members, userID)
	g.UpdatedAt = r.now()
	return true, nil
}

// RemoveMember drops userID from the group's members
func (r *MemoryRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[groupID]
	if !ok {
		return ErrNotFound
	}
	g.Members = removeID(g.Members, userID)
	return nil
}

// CreatePost stores a new post
func (r *MemoryRepository) CreatePost(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = primitive.NewObjectID().Hex()
	post.CreatedAt = r.now()
	post.UpdatedAt = post.CreatedAt
	if post.LikedBy == nil {
		post.LikedBy = []string{}
	}
	r.posts[post.ID] = clonePost(post)
	return nil
}

// GetPostByID returns a copy of the post
func (r *MemoryRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePost(p), nil
}

// GetPosts returns matching posts, newest first
func (r *MemoryRepository) GetPosts(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if filter.GroupID != "" && p.Group != filter.GroupID {
			continue
		}
		if filter.AuthorID != "" && p.Author != filter.AuthorID {
			continue
		}
		posts = append(posts, *clonePost(p))
	}
	// ObjectIDs grow with time, so descending id is newest first
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts, nil
}

// AddLike appends userID to the post's likers if absent
func (r *MemoryRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, ErrNotFound
	}
	if containsID(p.LikedBy, userID) {
		return false, nil
	}
	p.LikedBy = append(p.LikedBy, userID)
	p.UpdatedAt = r.now()
	return true, nil
}

// RemoveLike drops userID from the post's likers
func (r *MemoryRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return ErrNotFound
	}
	p.LikedBy = removeID(p.LikedBy, userID)
	return nil
}

// CreateMessage appends a message
func (r *MemoryRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.ID = primitive.NewObjectID().Hex()
	message.CreatedAt = r.now()
	r.messages = append(r.messages, *message)
	return nil
}

// GetMessages returns the messages for target in the order they were created
func (r *MemoryRepository) GetMessages(ctx context.Context, kind models.MessageKind, target string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Message{}
	for _, m := range r.messages {
		if m.Kind == kind && m.Target == target {
			out = append(out, m)
		}
	}
	return out, nil
}
