// Package market holds the closed region and carrier enumerations feeds are scoped by.
package market

import "github.com/kailas-cloud/feedex/internal/domain"

// Region is a marketplace region with a stable integer id.
type Region struct {
	id   int
	slug string
	name string
}

// ID returns the stable region id.
func (r Region) ID() int { return r.id }

// Slug returns the region code used on the wire.
func (r Region) Slug() string { return r.slug }

// Name returns the display name.
func (r Region) Name() string { return r.name }

// IsRestOfWorld reports whether r is the fallback region.
func (r Region) IsRestOfWorld() bool { return r.id == RestOfWorld.id }

// RestOfWorld is the fallback region for empty regional feeds.
var RestOfWorld = Region{id: 1, slug: "restofworld", name: "Rest of World"}

var regions = []Region{
	RestOfWorld,
	{id: 2, slug: "us", name: "United States"},
	{id: 4, slug: "uk", name: "United Kingdom"},
	{id: 7, slug: "br", name: "Brazil"},
	{id: 8, slug: "es", name: "Spain"},
	{id: 9, slug: "co", name: "Colombia"},
	{id: 10, slug: "ve", name: "Venezuela"},
	{id: 11, slug: "pl", name: "Poland"},
	{id: 12, slug: "mx", name: "Mexico"},
	{id: 13, slug: "hu", name: "Hungary"},
	{id: 14, slug: "de", name: "Germany"},
	{id: 15, slug: "me", name: "Montenegro"},
	{id: 16, slug: "rs", name: "Serbia"},
	{id: 17, slug: "gr", name: "Greece"},
	{id: 18, slug: "pe", name: "Peru"},
	{id: 19, slug: "uy", name: "Uruguay"},
	{id: 20, slug: "ar", name: "Argentina"},
	{id: 21, slug: "cn", name: "China"},
	{id: 22, slug: "it", name: "Italy"},
	{id: 23, slug: "cl", name: "Chile"},
	{id: 24, slug: "sv", name: "El Salvador"},
	{id: 25, slug: "gt", name: "Guatemala"},
	{id: 26, slug: "ec", name: "Ecuador"},
	{id: 27, slug: "cr", name: "Costa Rica"},
	{id: 28, slug: "pa", name: "Panama"},
	{id: 29, slug: "ni", name: "Nicaragua"},
	{id: 30, slug: "bd", name: "Bangladesh"},
	{id: 31, slug: "in", name: "India"},
}

var (
	regionsBySlug = make(map[string]Region, len(regions))
	regionsByID   = make(map[int]Region, len(regions))
)

func init() {
	for _, r := range regions {
		regionsBySlug[r.slug] = r
		regionsByID[r.id] = r
	}
}

// RegionBySlug resolves a region code.
func RegionBySlug(slug string) (Region, error) {
	r, ok := regionsBySlug[slug]
	if !ok {
		return Region{}, domain.NewValidation(domain.ErrInvalidRegion, "unknown region %q", slug)
	}
	return r, nil
}

// RegionByID resolves a region id.
func RegionByID(id int) (Region, bool) {
	r, ok := regionsByID[id]
	return r, ok
}

// Regions returns all known regions in id order.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}
