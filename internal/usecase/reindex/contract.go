package reindex

import (
	"context"

	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
)

// Records hands out a consistent snapshot of everything the index mirrors.
// No index-syncing write commits while fn runs.
type Records interface {
	Snapshot(ctx context.Context, fn func(ctx context.Context, items []domfeed.Item, elements []domfeed.Element) error) error
}

// Indexer rewrites the index from a full snapshot.
type Indexer interface {
	Rebuild(ctx context.Context, items []domfeed.Item, elements []domfeed.Element) (orphans int, err error)
}
