package realtime

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"deliveryhub/internal/models"
)

// Dispatcher is the notification channel the engine hands payloads to: each
// payload is persisted for in-app inboxes and broadcast over the hub. A
// failed insert does not block the broadcast; the store is best-effort here,
// exactly-once delivery is out of scope.
type Dispatcher struct {
	Hub *Hub
	DB  *mongo.Database
}

func NewDispatcher(hub *Hub, db *mongo.Database) *Dispatcher {
	return &Dispatcher{Hub: hub, DB: db}
}

func (d *Dispatcher) Dispatch(ctx context.Context, p models.NotificationPayload) {
	notification := models.Notification{
		NotificationPayload: p,
		CreatedAt:           time.Now(),
	}
	if _, err := d.DB.Collection("notifications").InsertOne(ctx, notification); err != nil {
		log.Println("[NOTIFY] [ERROR] persist failed:", err)
	}

	d.Hub.Broadcast("notification", p)
	log.Printf("[NOTIFY] [INFO] %q -> %s %s", p.Title, p.RecipientRole, p.RecipientID)
}
