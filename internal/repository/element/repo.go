package element

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/feed"
)

// store is the consumer interface for element search.
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

// Repo implements the element search contracts of the feed and element usecases.
type Repo struct {
	store store
}

// New creates an element index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs q against the union element index. total counts every match.
func (r *Repo) Search(ctx context.Context, q *db.SearchQuery) (elements []feed.Element, total int, err error) {
	res, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("search elements: %w", err)
	}

	elements = make([]feed.Element, 0, len(res.Entries))
	for _, hit := range res.Entries {
		e, err := parseHashFields(hit.Fields)
		if err != nil {
			return nil, 0, fmt.Errorf("parse element %s: %w", hit.Key, err)
		}
		elements = append(elements, e)
	}
	return elements, res.Total, nil
}

// Fetch runs q and indexes the hits by element key.
func (r *Repo) Fetch(ctx context.Context, q *db.SearchQuery) (map[feed.ElementKey]feed.Element, error) {
	elements, _, err := r.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	m := make(map[feed.ElementKey]feed.Element, len(elements))
	for _, e := range elements {
		m[e.Key()] = e
	}
	return m, nil
}
