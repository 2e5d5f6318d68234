package models

import "time"

// Post is authored by a user and optionally published into a group
type Post struct {
	ID        string    `json:"id" bson:"_id"`
	Content   string    `json:"content" bson:"content" validate:"required,min=1,max=280"`
	Author    string    `json:"author" bson:"author" validate:"required"`
	Group     string    `json:"group,omitempty" bson:"group,omitempty"`
	LikedBy   []string  `json:"liked_by" bson:"liked_by"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=280"`
	Author  string `json:"author" validate:"required"`
	Group   string `json:"group,omitempty"`
}

// LikePostRequest defines the request body for liking a post
type LikePostRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// PostLike is the result of a like: both sides of the relation after the update
type PostLike struct {
	Post *Post `json:"post"`
	User *User `json:"user"`
}
