package feed

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/app"
	"github.com/kailas-cloud/feedex/internal/domain/device"
	"github.com/kailas-cloud/feedex/internal/domain/search/filter"
	"github.com/kailas-cloud/feedex/internal/domain/search/schema"
)

// Eligibility is the app visibility context of a request.
// A zero Device means no device constraint.
type Eligibility struct {
	Filtering bool
	Device    device.Type
	Region    int
}

// AppResolver batch-resolves app ids against the catalog.
type AppResolver struct {
	apps AppSearcher
}

// NewAppResolver creates an app resolver.
func NewAppResolver(apps AppSearcher) *AppResolver {
	return &AppResolver{apps: apps}
}

// Resolve returns the apps among ids visible under el. Missing or ineligible
// ids are absent from the map.
func (r *AppResolver) Resolve(ctx context.Context, ids []int64, el Eligibility) (map[int64]app.App, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return map[int64]app.App{}, nil
	}

	apps, err := r.apps.Search(ctx, AppsQuery(unique, el))
	if err != nil {
		return nil, fmt.Errorf("resolve %d apps: %w", len(unique), err)
	}

	out := make(map[int64]app.App, len(apps))
	for _, a := range apps {
		out[a.ID()] = a
	}
	return out, nil
}

// AppsQuery builds the catalog query for ids. Without filtering it is a
// plain existence fetch.
func AppsQuery(ids []int64, el Eligibility) *db.SearchQuery {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = app.FormatID(id)
	}
	must := []filter.Condition{filter.Terms(schema.ID, values...)}

	var mustNot []filter.Condition
	if el.Filtering {
		must = append(must, filter.Term(schema.Status, string(app.StatusPublic)))
		if el.Device != 0 {
			must = append(must, filter.Term(schema.Device, strconv.Itoa(int(el.Device))))
		}
		mustNot = append(mustNot, filter.Term(schema.RegionExcluded, strconv.Itoa(el.Region)))
	}

	return &db.SearchQuery{
		Index:  schema.AppIndex,
		Filter: filter.Bool(must, nil, mustNot),
		Limit:  len(ids),
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
