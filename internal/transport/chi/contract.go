package chi

import (
	"context"

	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	builderuc "github.com/kailas-cloud/feedex/internal/usecase/builder"
	catalog "github.com/kailas-cloud/feedex/internal/usecase/catalog"
	elementuc "github.com/kailas-cloud/feedex/internal/usecase/element"
	feeduc "github.com/kailas-cloud/feedex/internal/usecase/feed"
	healthuc "github.com/kailas-cloud/feedex/internal/usecase/health"
)

// FeedService assembles feed pages.
type FeedService interface {
	Feed(ctx context.Context, req feeduc.Request) (*feeduc.Page, error)
}

// ElementService serves editorial reads and element writes.
type ElementService interface {
	Search(ctx context.Context, q string) (map[domfeed.ItemType][]domfeed.Resolved, error)
	Get(ctx context.Context, t domfeed.ItemType, slug string, limit int) (domfeed.Resolved, error)
	ListRecent(ctx context.Context, t domfeed.ItemType, offset, limit int) (*elementuc.Listing, error)
	Create(ctx context.Context, in elementuc.Input) (domfeed.Resolved, error)
	Update(ctx context.Context, key domfeed.ElementKey, in elementuc.Input) (domfeed.Resolved, error)
	Delete(ctx context.Context, key domfeed.ElementKey) error
	Publish(ctx context.Context, shelfID int64) (domfeed.Item, error)
	Unpublish(ctx context.Context, shelfID int64) error
}

// BuilderService replaces region feeds.
type BuilderService interface {
	Replace(ctx context.Context, p builderuc.Payload) error
}

// CatalogService stores catalog apps.
type CatalogService interface {
	Upsert(ctx context.Context, in []catalog.Input) (int, error)
}

// ImageStore serves processed images.
type ImageStore interface {
	Blob(ctx context.Context, hash string) ([]byte, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
