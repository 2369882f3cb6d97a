package element

import (
	"context"

	"github.com/kailas-cloud/feedex/internal/db"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/image"
)

// Records is the transactional element store.
type Records interface {
	CreateElement(
		ctx context.Context, e domfeed.Element,
		sync func(ctx context.Context, e domfeed.Element, removed []int64) error,
	) (domfeed.Element, error)
	UpdateElement(
		ctx context.Context, e domfeed.Element,
		sync func(ctx context.Context, e domfeed.Element, removed []int64) error,
	) (domfeed.Element, error)
	DeleteElement(
		ctx context.Context, key domfeed.ElementKey,
		sync func(ctx context.Context, e domfeed.Element, removed []int64) error,
	) error
	PublishShelf(
		ctx context.Context, shelfID int64,
		sync func(ctx context.Context, removed []int64, written []domfeed.Item) error,
	) (domfeed.Item, error)
	UnpublishShelf(
		ctx context.Context, shelfID int64,
		sync func(ctx context.Context, removed []int64, written []domfeed.Item) error,
	) error
}

// Indexer mirrors record writes into the search index.
type Indexer interface {
	SyncItems(ctx context.Context, removed []int64, written []domfeed.Item) error
	SyncElement(ctx context.Context, e domfeed.Element, removed []int64) error
	RemoveElement(ctx context.Context, e domfeed.Element, removed []int64) error
}

// ElementSearcher queries the element index.
type ElementSearcher interface {
	Search(ctx context.Context, q *db.SearchQuery) ([]domfeed.Element, int, error)
}

// ImageQueue accepts background image jobs.
type ImageQueue interface {
	Enqueue(ctx context.Context, j image.Job) error
}
