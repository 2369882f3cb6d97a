package feed

import (
	"github.com/kailas-cloud/feedex/internal/domain/app"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
)

// policy reports whether a resolved element may be shown.
type policy func(r domfeed.Resolved) bool

func hasApp(r domfeed.Resolved) bool { return r.App != nil }

func hasApps(r domfeed.Resolved) bool { return r.EffectiveAppCount() > 0 }

func enoughApps(r domfeed.Resolved) bool {
	return r.EffectiveAppCount() >= domfeed.MinAppsCollection
}

// policies are the count rules per element type. Shelves have none.
var policies = map[domfeed.ItemType][]policy{
	domfeed.TypeApp:        {hasApp},
	domfeed.TypeCollection: {hasApps, enoughApps},
	domfeed.TypeBrand:      {hasApps},
	domfeed.TypeShelf:      nil,
}

// Assemble joins items with their elements and resolved apps, in input order.
// Items whose element is missing are dropped. With filtering, elements left
// without enough visible apps are dropped too.
func Assemble(
	items []domfeed.Item,
	elements map[domfeed.ElementKey]domfeed.Element,
	apps map[int64]app.App,
	filtering bool,
) []domfeed.Entry {
	entries := make([]domfeed.Entry, 0, len(items))
	for _, item := range items {
		e, ok := elements[item.ElementKey()]
		if !ok {
			continue
		}
		r := domfeed.Resolve(e, apps)
		if filtering && !allow(r) {
			continue
		}
		entries = append(entries, domfeed.Entry{Item: item, Resolved: r})
	}
	return entries
}

func allow(r domfeed.Resolved) bool {
	for _, p := range policies[r.Element.ItemType()] {
		if !p(r) {
			return false
		}
	}
	return true
}

// AppIDs collects the member app ids of elements.
func AppIDs(elements map[domfeed.ElementKey]domfeed.Element) []int64 {
	var ids []int64
	for _, e := range elements {
		ids = append(ids, e.AppIDs()...)
	}
	return ids
}

// suppressed counts, per type, the items that did not survive assembly.
func suppressed(items []domfeed.Item, entries []domfeed.Entry) map[domfeed.ItemType]int {
	counts := make(map[domfeed.ItemType]int)
	for _, item := range items {
		counts[item.ItemType()]++
	}
	for _, e := range entries {
		counts[e.Item.ItemType()]--
	}
	for t, n := range counts {
		if n == 0 {
			delete(counts, t)
		}
	}
	return counts
}
