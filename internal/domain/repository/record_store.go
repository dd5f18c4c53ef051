package repository

import "context"

// Collection names in the record store
const (
	CollectionItems        = "items"
	CollectionTransactions = "transactions"
	CollectionSettings     = "settings"
	CollectionIdempotency  = "idempotency_keys"
)

// Collections lists every collection the application owns
var Collections = []string{
	CollectionItems,
	CollectionTransactions,
	CollectionSettings,
	CollectionIdempotency,
}

// Record is one keyed value in a collection
type Record struct {
	Key   string
	Value []byte
}

// RecordStore is the narrow key-value contract every persistent layer depends on.
// Get returns (nil, nil) when the key is absent.
type RecordStore interface {
	GetAll(ctx context.Context, collection string) ([]Record, error)
	Get(ctx context.Context, collection, key string) ([]byte, error)
	Put(ctx context.Context, collection, key string, value []byte) error
	Delete(ctx context.Context, collection, key string) error
	Clear(ctx context.Context, collection string) error
	// ReplaceAll clears the given collections and writes the snapshot in one
	// atomic step.
	ReplaceAll(ctx context.Context, snapshot map[string][]Record) error
	Close() error
}
