package feed

import (
	"context"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/app"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
)

// ItemSearcher runs feed item queries.
type ItemSearcher interface {
	Page(ctx context.Context, q *db.SearchQuery) (items []domfeed.Item, total int, err error)
}

// ElementFetcher loads the elements matched by a query, keyed by element.
type ElementFetcher interface {
	Fetch(ctx context.Context, q *db.SearchQuery) (map[domfeed.ElementKey]domfeed.Element, error)
}

// AppSearcher runs catalog app queries.
type AppSearcher interface {
	Search(ctx context.Context, q *db.SearchQuery) ([]app.App, error)
}

// Observer records feed assembly events.
type Observer interface {
	Pass(state State)
	Fallback()
	Suppressed(t domfeed.ItemType, n int)
	Outcome(o Outcome)
}

type nopObserver struct{}

func (nopObserver) Pass(State)                       {}
func (nopObserver) Fallback()                        {}
func (nopObserver) Suppressed(domfeed.ItemType, int) {}
func (nopObserver) Outcome(Outcome)                  {}
