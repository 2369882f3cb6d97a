package feed

import "fmt"

// ElementKey identifies an element across all element types.
type ElementKey struct {
	Type ItemType
	ID   int64
}

func (k ElementKey) String() string { return fmt.Sprintf("%s:%d", k.Type, k.ID) }

// Item is an ordered placement of one element in a region (and optionally a carrier) feed.
type Item struct {
	id        int64
	region    int
	carrier   *int
	order     int
	itemType  ItemType
	elementID int64
}

// NewItem validates and creates an unsaved Item.
func NewItem(region int, carrier *int, order int, itemType ItemType, elementID int64) (Item, error) {
	if region <= 0 {
		return Item{}, fmt.Errorf("region is required")
	}
	if !itemType.IsValid() {
		return Item{}, fmt.Errorf("unknown item type %q", itemType)
	}
	if elementID <= 0 {
		return Item{}, fmt.Errorf("element id must be positive")
	}
	if order < 0 {
		return Item{}, fmt.Errorf("order must be non-negative")
	}
	return Item{region: region, carrier: carrier, order: order, itemType: itemType, elementID: elementID}, nil
}

// ReconstructItem creates an Item without validation (storage hydration).
func ReconstructItem(id int64, region int, carrier *int, order int, itemType ItemType, elementID int64) Item {
	return Item{id: id, region: region, carrier: carrier, order: order, itemType: itemType, elementID: elementID}
}

// ID returns the record id, zero before insert.
func (i Item) ID() int64 { return i.id }

// Region returns the region id.
func (i Item) Region() int { return i.region }

// Carrier returns the carrier id, nil for carrier-agnostic items.
func (i Item) Carrier() *int { return i.carrier }

// Order returns the placement; lower comes first.
func (i Item) Order() int { return i.order }

// ItemType returns the referenced element type.
func (i Item) ItemType() ItemType { return i.itemType }

// ElementID returns the referenced element id.
func (i Item) ElementID() int64 { return i.elementID }

// ElementKey returns the key of the referenced element.
func (i Item) ElementKey() ElementKey { return ElementKey{Type: i.itemType, ID: i.elementID} }

// IsShelf reports whether the item places a shelf.
func (i Item) IsShelf() bool { return i.itemType == TypeShelf }

// WithID returns a copy carrying the stored id.
func (i Item) WithID(id int64) Item {
	i.id = id
	return i
}

// IsEmptyPage reports whether a page has no satisfying content:
// no items at all, or a lone shelf.
func IsEmptyPage[T interface{ IsShelf() bool }](items []T) bool {
	return len(items) == 0 || (len(items) == 1 && items[0].IsShelf())
}
