package realtime

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"deliveryhub/internal/models"
)

type orderChange struct {
	OperationType string       `bson:"operationType"`
	FullDocument  models.Order `bson:"fullDocument"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
}

// WatchOrders tails the order collection's change stream and rebroadcasts
// every change to connected clients, which is how all surfaces observe
// mutations: nothing is returned synchronously to the initiating caller
// beyond the operation result. Blocks until ctx is cancelled or the stream
// breaks. Requires the deployment to support change streams (replica set).
func WatchOrders(ctx context.Context, db *mongo.Database, hub *Hub) error {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := db.Collection("orders").Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return err
	}
	defer stream.Close(ctx)

	log.Println("[WATCH] [INFO] order change stream open")
	for stream.Next(ctx) {
		var change orderChange
		if err := stream.Decode(&change); err != nil {
			log.Println("[WATCH] [ERROR] decode failed:", err)
			continue
		}

		switch change.OperationType {
		case "delete":
			hub.Broadcast("orders.delete", map[string]string{"id": change.DocumentKey.ID.Hex()})
		default:
			hub.Broadcast("orders."+change.OperationType, change.FullDocument)
		}
	}
	return stream.Err()
}
