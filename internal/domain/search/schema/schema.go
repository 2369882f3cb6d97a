// Package schema names the search indexes and the document fields queries address.
package schema

import "github.com/kailas-cloud/feedex/internal/domain"

// Index names.
const (
	FeedItemIndex = domain.KeyPrefix + "feeditems:idx"
	ElementIndex  = domain.KeyPrefix + "elements:idx"
	AppIndex      = domain.KeyPrefix + "apps:idx"
)

// Shared fields.
const (
	ID       = "id"
	ItemType = "item_type"
	Region   = "region"
	Carrier  = "carrier"
)

// Feed item fields.
const (
	Order     = "order"
	ElementID = "element_id"
)

// Element fields. Shelves index carrier and region by slug.
const (
	Slug        = "slug"
	SlugRaw     = "slug_raw"
	Type        = "type"
	SearchNames = "search_names"
	Created     = "created"
	AppCount    = "app_count"
)

// App fields. Device and RegionExcluded are comma-separated tags.
const (
	Name           = "name"
	Status         = "status"
	Device         = "device"
	RegionExcluded = "region_excluded"
)
