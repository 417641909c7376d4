package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	numberIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "number", Value: 1}},
		Options: options.Index().SetName("number_unique").SetUnique(true),
	}
	statusIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "driverId", Value: 1}},
		Options: options.Index().SetName("status_driver_index"),
	}
	archivedIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "isArchived", Value: 1}, {Key: "status", Value: 1}},
		Options: options.Index().SetName("archived_status_index"),
	}

	log.Println("EnsureOrderIndexes: creating order indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{numberIndex, statusIndex, archivedIndex})
	if err != nil {
		log.Println("EnsureOrderIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	}
	roleIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "role", Value: 1}},
		Options: options.Index().SetName("role_index"),
	}

	log.Println("EnsureUserIndexes: creating user indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{emailIndex, roleIndex})
	if err != nil {
		log.Println("EnsureUserIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureAuditIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("auditLogs").Indexes()

	createdIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_index"),
	}

	log.Println("EnsureAuditIndexes: creating audit indexes")
	_, err := indexes.CreateOne(ctx, createdIndex)
	if err != nil {
		log.Println("EnsureAuditIndexes: index error:", err)
		return err
	}
	return nil
}
