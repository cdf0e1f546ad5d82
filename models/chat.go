package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message statuses.
const (
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageSeen      = "seen"
)

// MessagePreview is the denormalized lastMessage snapshot stored on a chat.
type MessagePreview struct {
	Text      string    `json:"text" bson:"text"`
	Sender    string    `json:"sender" bson:"sender"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Chat is a conversation container scoped to a fixed set of participants.
// Participants are stored deduplicated and sorted so a participant set maps
// to exactly one document.
type Chat struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Participants []string           `json:"participants" bson:"participants"`
	LastMessage  *MessagePreview    `json:"lastMessage,omitempty" bson:"lastMessage,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Message is a single content unit within a chat.
type Message struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ChatID     string             `json:"chatId" bson:"chatId"`
	SenderID   string             `json:"senderId" bson:"senderId"`
	ReceiverID string             `json:"receiverId" bson:"receiverId"`
	Content    string             `json:"content" bson:"content"`
	Status     string             `json:"status" bson:"status"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}
