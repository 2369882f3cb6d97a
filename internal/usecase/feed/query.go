package feed

import (
	"strconv"

	"github.com/kailas-cloud/feedex/internal/db"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/search/filter"
	"github.com/kailas-cloud/feedex/internal/domain/search/schema"
	"github.com/kailas-cloud/feedex/internal/domain/search/score"
)

// LookupLimit bounds editorial lookups.
const LookupLimit = 10

// Scope is the region context of one feed pass. OriginalRegion is set while
// falling back so the requested region's shelf stays atop the fallback feed.
type Scope struct {
	Region         int
	Carrier        *int
	OriginalRegion *int
}

// FeedQuery builds the primary feed item query for scope.
//
// Items are ranked by 1/(1+order) within the scope region; shelves are
// boosted above everything. With a carrier, shelves of other carriers are
// excluded.
func FeedQuery(s Scope, offset, limit, window int) *db.SearchQuery {
	region := filter.Term(schema.Region, strconv.Itoa(s.Region))
	shelf := filter.Term(schema.ItemType, string(domfeed.TypeShelf))

	var must, should, mustNot []filter.Condition
	if s.OriginalRegion != nil {
		original := filter.Group(filter.All(filter.Term(schema.Region, strconv.Itoa(*s.OriginalRegion)), shelf))
		should = []filter.Condition{region, original}
	} else {
		must = []filter.Condition{region}
	}
	if s.Carrier != nil {
		mustNot = []filter.Condition{filter.Group(filter.Bool(
			[]filter.Condition{shelf},
			nil,
			[]filter.Condition{filter.Term(schema.Carrier, strconv.Itoa(*s.Carrier))},
		))}
	}

	return &db.SearchQuery{
		Index:  schema.FeedItemIndex,
		Filter: filter.Bool(must, should, mustNot),
		Functions: []score.Function{
			score.BoostFactor(domfeed.ShelfBoost, filter.All(shelf)),
			score.FieldValueFactor(schema.Order, score.ModifierReciprocal,
				filter.Bool([]filter.Condition{region}, nil, []filter.Condition{shelf})),
		},
		SortBy: schema.Order,
		Offset: offset,
		Limit:  limit,
		Window: window,
	}
}

// ElementsQuery fetches the elements referenced by items, one hit per item at most.
func ElementsQuery(items []domfeed.Item) *db.SearchQuery {
	conds := make([]filter.Condition, len(items))
	for i, item := range items {
		conds[i] = filter.Group(filter.All(
			filter.Term(schema.ID, strconv.FormatInt(item.ElementID(), 10)),
			filter.Term(schema.ItemType, string(item.ItemType())),
		))
	}
	return &db.SearchQuery{
		Index:  schema.ElementIndex,
		Filter: filter.Any(conds...),
		Limit:  len(items),
	}
}

// LookupQuery matches loosely typed editorial queries against slugs, names,
// carrier prefixes and region slugs.
func LookupQuery(q string) *db.SearchQuery {
	return &db.SearchQuery{
		Index: schema.ElementIndex,
		Filter: filter.Any(
			filter.Phrase(schema.Slug, q, 2),
			filter.Phrase(schema.Type, q, 2),
			filter.Phrase(schema.SearchNames, q, 2),
			filter.Prefix(schema.Carrier, q),
			filter.Term(schema.Region, q),
		),
		Limit: LookupLimit,
	}
}

// DetailQuery matches one element by type and exact slug.
func DetailQuery(t domfeed.ItemType, slug string) *db.SearchQuery {
	return &db.SearchQuery{
		Index: schema.ElementIndex,
		Filter: filter.All(
			filter.Term(schema.ItemType, string(t)),
			filter.Term(schema.SlugRaw, slug),
		),
		Limit: 1,
	}
}

// ListingQuery lists elements of type t, newest first.
func ListingQuery(t domfeed.ItemType, offset, limit int) *db.SearchQuery {
	return &db.SearchQuery{
		Index:    schema.ElementIndex,
		Filter:   filter.All(filter.Term(schema.ItemType, string(t))),
		SortBy:   schema.Created,
		SortDesc: true,
		Offset:   offset,
		Limit:    limit,
	}
}
