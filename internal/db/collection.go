package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"
)

// PantryCollection defines the interface for pantry data operations.
type PantryCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (PantryCursor, error)
}

// PantryCursor defines the interface for pantry cursor operations.
type PantryCursor interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Err() error
	Close(ctx context.Context) error
}
