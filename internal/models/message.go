package models

import "time"

// MessageKind tells what a message is attached to
type MessageKind string

const (
	// MessageKindComment is a comment on a post
	MessageKindComment MessageKind = "comment"
	// MessageKindGroup is a chat message posted to a group
	MessageKindGroup MessageKind = "group"
)

// Valid reports whether k is a known kind
func (k MessageKind) Valid() bool {
	return k == MessageKindComment || k == MessageKindGroup
}

// Message is a comment on a post or a message in a group conversation
type Message struct {
	ID        string      `json:"id" bson:"_id"`
	Kind      MessageKind `json:"kind" bson:"kind"`
	Target    string      `json:"target" bson:"target"` // post id for comments, group id for group messages
	Author    string      `json:"author" bson:"author"`
	Content   string      `json:"content" bson:"content" validate:"required,min=1,max=500"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

// CreateMessageRequest is the store-level input for any message kind
type CreateMessageRequest struct {
	Kind    MessageKind `json:"kind" validate:"required,oneof=comment group"`
	Target  string      `json:"target" validate:"required"`
	Author  string      `json:"author" validate:"required"`
	Content string      `json:"content" validate:"required,min=1,max=500"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Author string `json:"author" validate:"required"`
	Text   string `json:"text" validate:"required,min=1,max=500"`
}

// CreateGroupMessageRequest defines the request body for posting to a group
type CreateGroupMessageRequest struct {
	Sender  string `json:"sender" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=500"`
}
