package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationPayload is the message contract handed to the delivery channel.
// The engine only produces payloads; transport, retries and offline queuing
// live outside this codebase.
type NotificationPayload struct {
	Title          string `bson:"title" json:"title"`
	Body           string `bson:"body" json:"body"`
	RecipientRole  string `bson:"recipientRole" json:"recipientRole"`
	RecipientID    string `bson:"recipientId,omitempty" json:"recipientId,omitempty"`
	DeepLinkTarget string `bson:"deepLinkTarget" json:"deepLinkTarget"`
}

// Notification is a dispatched payload persisted for in-app inboxes.
type Notification struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NotificationPayload `bson:",inline"`
	IsRead              bool      `bson:"isRead" json:"isRead"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
}
