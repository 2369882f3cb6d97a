package element

import (
	"strconv"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/search/schema"
)

const (
	// IndexName is the union index over all element types.
	IndexName = schema.ElementIndex
	keyPrefix = domain.KeyPrefix + "element:"

	FieldID          = schema.ID
	FieldItemType    = schema.ItemType
	FieldSlug        = schema.Slug
	FieldSlugRaw     = schema.SlugRaw
	FieldType        = schema.Type
	FieldSearchNames = schema.SearchNames
	FieldCarrier     = schema.Carrier
	FieldRegion      = schema.Region
	FieldCreated     = schema.Created
	FieldAppCount    = schema.AppCount
	fieldDoc         = "__doc"
)

// Key returns the hash key of an element document.
func Key(k feed.ElementKey) string {
	return keyPrefix + string(k.Type) + ":" + strconv.FormatInt(k.ID, 10)
}

// KeyPattern matches every element document.
func KeyPattern() string { return keyPrefix + "*" }

// Index returns the union element index definition.
func Index() *db.IndexDefinition {
	return db.NewIndex(IndexName).
		Prefix(keyPrefix).
		Tag(FieldID).
		Tag(FieldItemType).
		Text(FieldSlug).
		TagAs(FieldSlug, FieldSlugRaw).
		Text(FieldType).
		Text(FieldSearchNames).
		Tag(FieldCarrier).
		Tag(FieldRegion).
		SortableNumeric(FieldCreated).
		Numeric(FieldAppCount).
		MustBuild()
}
