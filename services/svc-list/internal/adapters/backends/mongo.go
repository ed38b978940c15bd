package backends

import (
	"context"
	"fmt"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoBackend stores one document per record. Replace deletes every document
// before inserting the new list, so a concurrent reader can observe an empty
// or partial collection while it runs; the service routes single-record
// intents through the RecordStore methods to stay clear of that window.
type MongoBackend struct {
	collection *mongo.Collection
	logger     logger.Logger
}

func NewMongoBackend(collection *mongo.Collection, log logger.Logger) *MongoBackend {
	return &MongoBackend{
		collection: collection,
		logger:     log.Component("mongodb-backend"),
	}
}

func (b *MongoBackend) Name() string {
	return "mongodb"
}

// EnsureIndexes creates the unique index on id.
func (b *MongoBackend) EnsureIndexes(ctx context.Context) error {
	_, err := b.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("id_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique index on id: %w", err)
	}

	return nil
}

// Load returns records in insertion order.
func (b *MongoBackend) Load(ctx context.Context) (model.List, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.D{{Key: "_id", Value: 0}})

	cursor, err := b.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", b.collection.Name(), err)
	}

	list := model.List{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", b.collection.Name(), err)
	}

	return list.Normalize(), nil
}

func (b *MongoBackend) Replace(ctx context.Context, list model.List) error {
	deleted, err := b.collection.DeleteMany(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", b.collection.Name(), err)
	}

	if len(list) == 0 {
		return nil
	}

	docs := make([]any, 0, len(list))
	for _, record := range list {
		docs = append(docs, record)
	}

	if _, err := b.collection.InsertMany(ctx, docs); err != nil {
		b.logger.Error().Err(err).
			Int64("deleted", deleted.DeletedCount).
			Int("records", len(list)).
			Msg("insert after clear failed, collection may be partial")

		return b.translateWriteError(err, "")
	}

	return nil
}

func (b *MongoBackend) InsertRecord(ctx context.Context, record model.Record) error {
	if _, err := b.collection.InsertOne(ctx, record); err != nil {
		return b.translateWriteError(err, record.ID)
	}

	return nil
}

func (b *MongoBackend) UpdateRecord(ctx context.Context, previousID string, record model.Record) error {
	result, err := b.collection.UpdateOne(ctx,
		bson.D{{Key: "id", Value: previousID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "id", Value: record.ID},
			{Key: "name", Value: record.Name},
			{Key: "status", Value: record.Status},
		}}},
	)
	if err != nil {
		return b.translateWriteError(err, record.ID)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("record %s no longer exists", previousID)
	}

	return nil
}

func (b *MongoBackend) DeleteRecord(ctx context.Context, id string) error {
	result, err := b.collection.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("record %s no longer exists", id)
	}

	return nil
}

func (b *MongoBackend) Ping(ctx context.Context) error {
	return b.collection.Database().Client().Ping(ctx, readpref.Primary())
}

func (b *MongoBackend) Close(ctx context.Context) error {
	return b.collection.Database().Client().Disconnect(ctx)
}

func (b *MongoBackend) translateWriteError(err error, id string) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongodb: %w", model.NewDuplicateIDError(id))
	}

	return fmt.Errorf("failed to write %s: %w", b.collection.Name(), err)
}
