package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/pantry-finder/internal/models"
	"github.com/ukydev/pantry-finder/internal/source"
)

// ConnectMongo connects to MongoDB at uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoCollection wraps a MongoDB collection holding pantry documents.
type MongoCollection struct {
	Collection *mongo.Collection
}

// Find queries pantry documents from the collection.
func (c *MongoCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (PantryCursor, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cur, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return cur, nil
}

// MongoSource serves the pantry feed from a MongoDB collection. Documents use the same
// field names as the JSON feed; insertion order is preserved by sorting on _id.
type MongoSource struct {
	Collection PantryCollection
}

// NewMongoSource creates a source reading from coll.
func NewMongoSource(coll PantryCollection) *MongoSource {
	return &MongoSource{Collection: coll}
}

// Fetch reads every document. Query and cursor failures are transport errors; a
// document that does not match the pantry shape is a decode error.
func (s *MongoSource) Fetch(ctx context.Context) ([]models.Pantry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, source.TransportError(err)
	}
	defer cursor.Close(context.Background())

	pantries := make([]models.Pantry, 0)
	for i := 0; cursor.Next(ctx); i++ {
		var rec source.Record
		if err := cursor.Decode(&rec); err != nil {
			return nil, source.DecodeError(fmt.Errorf("document %d: %w", i, err))
		}
		p, err := rec.Pantry()
		if err != nil {
			return nil, source.DecodeError(fmt.Errorf("document %d: %w", i, err))
		}
		pantries = append(pantries, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, source.TransportError(err)
	}
	return pantries, nil
}
