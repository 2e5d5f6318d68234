package models

import "time"

// Profile holds optional presentation fields of a user
type Profile struct {
	Bio    string `json:"bio" bson:"bio" validate:"max=280"`
	Avatar string `json:"avatar" bson:"avatar" validate:"omitempty,url"`
}

// User is a member of the hub. Groups and LikedPosts mirror Group.Members and Post.LikedBy.
type User struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name" validate:"required,min=2,max=50"`
	Email      string    `json:"email" bson:"email" validate:"required,email"` // unique across all users
	Profile    Profile   `json:"profile" bson:"profile"`
	Groups     []string  `json:"groups" bson:"groups"`
	LikedPosts []string  `json:"liked_posts" bson:"liked_posts"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// CreateUserRequest defines the request body for creating a user
type CreateUserRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=50"`
	Email   string  `json:"email" validate:"required,email"`
	Profile Profile `json:"profile"`
}
