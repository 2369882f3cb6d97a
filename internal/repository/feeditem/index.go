package feeditem

import (
	"strconv"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/search/schema"
)

const (
	// IndexName is the feed item search index.
	IndexName = schema.FeedItemIndex
	keyPrefix = domain.KeyPrefix + "feeditem:"

	FieldID        = schema.ID
	FieldRegion    = schema.Region
	FieldCarrier   = schema.Carrier
	FieldOrder     = schema.Order
	FieldItemType  = schema.ItemType
	FieldElementID = schema.ElementID
)

// Key returns the hash key of a feed item document.
func Key(id int64) string { return keyPrefix + strconv.FormatInt(id, 10) }

// KeyPattern matches every feed item document.
func KeyPattern() string { return keyPrefix + "*" }

// Index returns the feed item index definition.
func Index() *db.IndexDefinition {
	return db.NewIndex(IndexName).
		Prefix(keyPrefix).
		Tag(FieldID).
		Tag(FieldRegion).
		Tag(FieldCarrier).
		SortableNumeric(FieldOrder).
		Tag(FieldItemType).
		Tag(FieldElementID).
		MustBuild()
}
