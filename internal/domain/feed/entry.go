package feed

import "github.com/kailas-cloud/feedex/internal/domain/app"

// MemberApp is a resolved member of a multi-app element.
type MemberApp struct {
	App   app.App
	Group string
}

// Resolved is an element with its app references replaced by catalog documents.
// App is set for single-app elements (nil when filtered out); Apps for the rest.
type Resolved struct {
	Element Element
	App     *app.App
	Apps    []MemberApp
}

// EffectiveAppCount returns how many member apps survived resolution.
func (r Resolved) EffectiveAppCount() int {
	if r.Element.ItemType() == TypeApp {
		if r.App == nil {
			return 0
		}
		return 1
	}
	return len(r.Apps)
}

// Resolve substitutes app references of e with documents from apps.
// Missing apps are dropped from lists; a missing single app yields nil.
func Resolve(e Element, apps map[int64]app.App) Resolved {
	r := Resolved{Element: e}
	if e.ItemType() == TypeApp {
		refs := e.AppRefs()
		if a, ok := apps[refs[0].ID]; ok {
			r.App = &a
		}
		return r
	}

	refs := e.AppRefs()
	r.Apps = make([]MemberApp, 0, len(refs))
	for _, ref := range refs {
		if a, ok := apps[ref.ID]; ok {
			r.Apps = append(r.Apps, MemberApp{App: a, Group: ref.Group})
		}
	}
	return r
}

// TrimApps keeps at most limit member apps. Non-positive limits keep all.
func (r Resolved) TrimApps(limit int) Resolved {
	if limit > 0 && len(r.Apps) > limit {
		r.Apps = r.Apps[:limit]
	}
	return r
}

// Entry is one assembled feed position: the placement plus its resolved element.
type Entry struct {
	Item     Item
	Resolved Resolved
}

// IsShelf reports whether the entry places a shelf.
func (e Entry) IsShelf() bool { return e.Item.IsShelf() }
