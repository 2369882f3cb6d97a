// Package feed models feed items (ordered placements) and the polymorphic elements they reference.
package feed

import "github.com/kailas-cloud/feedex/internal/domain"

// ItemType is the kind of element a feed item references.
type ItemType string

const (
	// TypeApp is a single featured app.
	TypeApp ItemType = "app"
	// TypeCollection is a curated list of apps.
	TypeCollection ItemType = "collection"
	// TypeBrand is a branded list of apps.
	TypeBrand ItemType = "brand"
	// TypeShelf is a carrier+region promotional shelf.
	TypeShelf ItemType = "shelf"
)

const (
	// MinAppsCollection is the smallest effective app count a public collection may show.
	MinAppsCollection = 3
	// ShelfBoost is the score multiplier that floats eligible shelves to the top.
	ShelfBoost = 10000.0
)

var plurals = map[ItemType]string{
	TypeApp:        "apps",
	TypeCollection: "collections",
	TypeBrand:      "brands",
	TypeShelf:      "shelves",
}

var byPlural = map[string]ItemType{
	"apps":        TypeApp,
	"collections": TypeCollection,
	"brands":      TypeBrand,
	"shelves":     TypeShelf,
}

// ItemTypes lists every element type in a stable order.
var ItemTypes = []ItemType{TypeApp, TypeBrand, TypeCollection, TypeShelf}

// IsValid reports whether t is a known type.
func (t ItemType) IsValid() bool {
	_, ok := plurals[t]
	return ok
}

// Plural returns the collection name used in URLs and grouped responses.
func (t ItemType) Plural() string { return plurals[t] }

// ParseItemType resolves a singular type name.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.IsValid() {
		return "", domain.NewValidation(domain.ErrInvalidItemType, "unknown item type %q", s)
	}
	return t, nil
}

// ParsePlural resolves a plural type name.
func ParsePlural(s string) (ItemType, error) {
	t, ok := byPlural[s]
	if !ok {
		return "", domain.NewValidation(domain.ErrInvalidItemType, "unknown item type %q", s)
	}
	return t, nil
}
