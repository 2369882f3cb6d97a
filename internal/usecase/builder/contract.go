package builder

import (
	"context"

	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
)

// Records is the transactional feed item store.
type Records interface {
	MissingElements(ctx context.Context, keys []domfeed.ElementKey) ([]domfeed.ElementKey, error)
	ReplaceRegions(
		ctx context.Context, plan map[int][]domfeed.Item,
		sync func(ctx context.Context, removed []int64, written []domfeed.Item) error,
	) error
}

// Indexer mirrors feed item writes into the search index.
type Indexer interface {
	SyncItems(ctx context.Context, removed []int64, written []domfeed.Item) error
}
