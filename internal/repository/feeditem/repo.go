package feeditem

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/feed"
)

// store is the consumer interface for feed item search.
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

// Repo implements usecase/feed.ItemSearcher.
type Repo struct {
	store store
}

// New creates a feed item repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Page runs q against the feed item index and hydrates the hits in rank order.
// total counts every match, not only the returned window.
func (r *Repo) Page(ctx context.Context, q *db.SearchQuery) (items []feed.Item, total int, err error) {
	res, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("search feed items: %w", err)
	}

	items = make([]feed.Item, 0, len(res.Entries))
	for _, e := range res.Entries {
		item, err := parseHashFields(e.Fields)
		if err != nil {
			return nil, 0, fmt.Errorf("parse feed item %s: %w", e.Key, err)
		}
		items = append(items, item)
	}
	return items, res.Total, nil
}
