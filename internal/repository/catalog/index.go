package catalog

import (
	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/app"
	"github.com/kailas-cloud/feedex/internal/domain/search/schema"
)

const (
	// IndexName is the app catalog index.
	IndexName = schema.AppIndex
	keyPrefix = domain.KeyPrefix + "app:"

	FieldID             = schema.ID
	FieldSlug           = schema.Slug
	FieldName           = schema.Name
	FieldStatus         = schema.Status
	FieldDevices        = schema.Device
	FieldRegionExcluded = schema.RegionExcluded
	fieldIcon           = "icon"
)

// Key returns the hash key of an app document.
func Key(id int64) string { return keyPrefix + app.FormatID(id) }

// Index returns the app catalog index definition.
func Index() *db.IndexDefinition {
	return db.NewIndex(IndexName).
		Prefix(keyPrefix).
		Tag(FieldID).
		Tag(FieldSlug).
		Text(FieldName).
		Tag(FieldStatus).
		Tag(FieldDevices).
		Tag(FieldRegionExcluded).
		MustBuild()
}
