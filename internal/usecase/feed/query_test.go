package feed

import (
	"testing"

	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/search/filter"
	"github.com/kailas-cloud/feedex/internal/domain/search/score"
)

func TestFeedQuery_ReciprocalOrdering(t *testing.T) {
	q := FeedQuery(Scope{Region: brazil}, 0, 25, 1000)

	var found bool
	for _, fn := range q.Functions {
		if !fn.IsBoost() && fn.Field() == "order" && fn.Modifier() == score.ModifierReciprocal {
			found = true
		}
	}
	if !found {
		t.Fatal("primary query must rank by reciprocal order")
	}

	tests := []struct {
		name string
		doc  map[string]string
		want float64
	}{
		{"first item", itemDoc(item(1, brazil, nil, 0, domfeed.TypeApp, 1)), 1},
		{"fourth item", itemDoc(item(2, brazil, nil, 3, domfeed.TypeApp, 2)), 0.25},
		{"shelf", itemDoc(item(3, brazil, ptr(1), 7, domfeed.TypeShelf, 3)), domfeed.ShelfBoost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := score.Combine(q.Functions, tt.doc); got != tt.want {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
	if q.Window != 1000 || q.Limit != 25 || q.SortBy != "order" {
		t.Errorf("query = %+v", q)
	}
}

func TestFeedQuery_CarrierExclusionOnlyWithCarrier(t *testing.T) {
	if q := FeedQuery(Scope{Region: brazil}, 0, 25, 0); len(q.Filter.MustNot()) != 0 {
		t.Errorf("no carrier: must_not = %v", q.Filter.MustNot())
	}

	q := FeedQuery(Scope{Region: brazil, Carrier: ptr(1)}, 0, 25, 0)
	if len(q.Filter.MustNot()) != 1 || q.Filter.MustNot()[0].Kind() != filter.KindGroup {
		t.Fatalf("carrier: must_not = %v", q.Filter.MustNot())
	}

	tests := []struct {
		name string
		doc  map[string]string
		want bool
	}{
		{"own carrier shelf", itemDoc(item(1, brazil, ptr(1), 0, domfeed.TypeShelf, 1)), true},
		{"other carrier shelf", itemDoc(item(2, brazil, ptr(2), 0, domfeed.TypeShelf, 2)), false},
		{"plain item", itemDoc(item(3, brazil, nil, 0, domfeed.TypeApp, 3)), true},
		{"other region", itemDoc(item(4, 4, nil, 0, domfeed.TypeApp, 4)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := q.Filter.Matches(tt.doc); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFeedQuery_FallbackIncludesOriginalShelf(t *testing.T) {
	original := brazil
	q := FeedQuery(Scope{Region: row, Carrier: ptr(1), OriginalRegion: &original}, 0, 25, 0)

	if len(q.Filter.Should()) != 2 {
		t.Fatalf("should = %v", q.Filter.Should())
	}
	if !q.Filter.Matches(itemDoc(item(1, brazil, ptr(1), 0, domfeed.TypeShelf, 1))) {
		t.Error("original region shelf must match")
	}
	if q.Filter.Matches(itemDoc(item(2, brazil, nil, 0, domfeed.TypeCollection, 2))) {
		t.Error("original region non-shelf items must not match")
	}
	if !q.Filter.Matches(itemDoc(item(3, row, nil, 4, domfeed.TypeApp, 3))) {
		t.Error("RestOfWorld items must match")
	}
}

func TestElementsQuery(t *testing.T) {
	items := []domfeed.Item{
		item(1, brazil, nil, 0, domfeed.TypeApp, 5),
		item(2, brazil, nil, 1, domfeed.TypeBrand, 5),
	}
	q := ElementsQuery(items)

	if q.Limit != 2 || q.Scored() {
		t.Errorf("query = %+v", q)
	}
	if !q.Filter.Matches(map[string]string{"id": "5", "item_type": "brand"}) {
		t.Error("brand 5 must match")
	}
	if q.Filter.Matches(map[string]string{"id": "5", "item_type": "shelf"}) {
		t.Error("shelf 5 must not match")
	}
}

func TestLookupQuery(t *testing.T) {
	q := LookupQuery("telef")
	tests := []struct {
		name string
		doc  map[string]string
		want bool
	}{
		{"carrier prefix", map[string]string{"carrier": "telefonica"}, true},
		{"name phrase", map[string]string{"search_names": "Best telef apps"}, true},
		{"region exact", map[string]string{"region": "telefonica"}, false},
		{"unrelated", map[string]string{"slug": "games"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := q.Filter.Matches(tt.doc); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
	if q.Limit != LookupLimit {
		t.Errorf("limit = %d", q.Limit)
	}
}

func TestDetailAndListingQueries(t *testing.T) {
	d := DetailQuery(domfeed.TypeCollection, "top-games")
	if !d.Filter.Matches(map[string]string{"item_type": "collection", "slug_raw": "top-games"}) {
		t.Error("detail must match exact slug")
	}
	if d.Filter.Matches(map[string]string{"item_type": "brand", "slug_raw": "top-games"}) {
		t.Error("detail must match type")
	}

	l := ListingQuery(domfeed.TypeShelf, 10, 5)
	if l.SortBy != "created" || !l.SortDesc || l.Offset != 10 || l.Limit != 5 || l.Scored() {
		t.Errorf("listing = %+v", l)
	}
}
