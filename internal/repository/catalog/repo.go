package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/app"
)

// store is the consumer interface for the app catalog.
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

// Repo is the read-mostly app catalog index.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs q against the catalog index.
func (r *Repo) Search(ctx context.Context, q *db.SearchQuery) ([]app.App, error) {
	res, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search apps: %w", err)
	}

	apps := make([]app.App, 0, len(res.Entries))
	for _, hit := range res.Entries {
		a, err := parseHashFields(hit.Fields)
		if err != nil {
			return nil, fmt.Errorf("parse app %s: %w", hit.Key, err)
		}
		apps = append(apps, a)
	}
	return apps, nil
}

// Upsert writes app documents in one pipeline. Every field is rewritten.
func (r *Repo) Upsert(ctx context.Context, apps []app.App) error {
	if len(apps) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(apps))
	for i, a := range apps {
		items[i] = db.HashSetItem{Key: Key(a.ID()), Fields: buildHashFields(a)}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d apps: %w", len(apps), err)
	}
	return nil
}
