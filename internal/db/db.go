package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the sub-interfaces
type Store interface {
	Pinger
	HashStore
	KVStore
	QueueStore
	Transactor
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// QueueStore provides list-backed FIFO queue operations.
type QueueStore interface {
	Push(ctx context.Context, queue string, payload []byte) error
	// Pop blocks up to timeout for the next payload; returns ErrKeyNotFound when none arrived.
	Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, error)
}

// Transactor applies hash deletes and writes atomically.
type Transactor interface {
	Apply(ctx context.Context, dels []string, sets []HashSetItem) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
}
