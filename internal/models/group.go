package models

import "time"

// Group is a named collection of users
type Group struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Description string    `json:"description" bson:"description" validate:"max=500"`
	Members     []string  `json:"members" bson:"members"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// CreateGroupRequest defines the request body for creating a group
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// JoinGroupRequest defines the request body for joining a group
type JoinGroupRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Membership is the result of a join: both sides of the relation after the update
type Membership struct {
	Group *Group `json:"group"`
	User  *User  `json:"user"`
}
