package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"deliveryhub/internal/models"
)

const (
	colOrders     = "orders"
	colUsers      = "users"
	colAuditLogs  = "auditLogs"
	colSettings   = "settings"
	countersDocID = "counters"
)

// Mongo implements Store on top of a mongo database.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) InsertOrder(ctx context.Context, o models.Order) (primitive.ObjectID, error) {
	res, err := m.db.Collection(colOrders).InsertOne(ctx, o)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

func (m *Mongo) GetOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var o models.Order
	err := m.db.Collection(colOrders).FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, ErrNotFound
	}
	return o, err
}

func (m *Mongo) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	filter := bson.M{}
	if f.Status != nil {
		filter["status"] = *f.Status
	}
	if f.Unassigned {
		filter["driverId"] = nil
	}
	if f.ActiveOnly {
		filter["status"] = bson.M{"$nin": []models.OrderStatus{
			models.StatusPending, models.StatusDelivered, models.StatusCancelled,
		}}
	}
	if f.ExcludeArchived {
		filter["isArchived"] = bson.M{"$ne": true}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.db.Collection(colOrders).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (m *Mongo) UpdateOrder(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := m.db.Collection(colOrders).UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.db.Collection(colOrders).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := m.db.Collection(colUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// NextSequence increments every named counter in one atomic document update so
// concurrent clients never mint the same number.
func (m *Mongo) NextSequence(ctx context.Context, keys ...string) (int64, error) {
	inc := bson.M{}
	for _, key := range keys {
		inc[key] = 1
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc bson.M
	err := m.db.Collection(colSettings).FindOneAndUpdate(
		ctx,
		bson.M{"_id": countersDocID},
		bson.M{"$inc": inc},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return numericValue(doc[keys[0]])
}

func (m *Mongo) ResetSequences(ctx context.Context, keys ...string) error {
	set := bson.M{}
	for _, key := range keys {
		set[key] = 0
	}
	_, err := m.db.Collection(colSettings).UpdateOne(
		ctx,
		bson.M{"_id": countersDocID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	return err
}

func numericValue(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected counter value type %T", v)
	}
}

func (m *Mongo) InsertAuditEntry(ctx context.Context, e models.AuditEntry) (primitive.ObjectID, error) {
	res, err := m.db.Collection(colAuditLogs).InsertOne(ctx, e)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

func (m *Mongo) GetAuditEntry(ctx context.Context, id primitive.ObjectID) (models.AuditEntry, error) {
	var e models.AuditEntry
	err := m.db.Collection(colAuditLogs).FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return models.AuditEntry{}, ErrNotFound
	}
	return e, err
}

func (m *Mongo) ListAuditEntries(ctx context.Context) ([]models.AuditEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.db.Collection(colAuditLogs).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (m *Mongo) ClearAuditEntries(ctx context.Context) error {
	_, err := m.db.Collection(colAuditLogs).DeleteMany(ctx, bson.M{})
	return err
}
