package feeditem

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/feed"
)

// Doc converts a stored feed item into its index document.
func Doc(item feed.Item) db.HashSetItem {
	return db.HashSetItem{Key: Key(item.ID()), Fields: buildHashFields(item)}
}

func buildHashFields(item feed.Item) map[string]string {
	m := map[string]string{
		FieldID:        strconv.FormatInt(item.ID(), 10),
		FieldRegion:    strconv.Itoa(item.Region()),
		FieldOrder:     strconv.Itoa(item.Order()),
		FieldItemType:  string(item.ItemType()),
		FieldElementID: strconv.FormatInt(item.ElementID(), 10),
	}
	if c := item.Carrier(); c != nil {
		m[FieldCarrier] = strconv.Itoa(*c)
	}
	return m
}

func parseHashFields(m map[string]string) (feed.Item, error) {
	id, err := strconv.ParseInt(m[FieldID], 10, 64)
	if err != nil {
		return feed.Item{}, fmt.Errorf("parse id: %w", err)
	}
	region, err := strconv.Atoi(m[FieldRegion])
	if err != nil {
		return feed.Item{}, fmt.Errorf("parse region: %w", err)
	}
	order, err := strconv.Atoi(m[FieldOrder])
	if err != nil {
		return feed.Item{}, fmt.Errorf("parse order: %w", err)
	}
	elementID, err := strconv.ParseInt(m[FieldElementID], 10, 64)
	if err != nil {
		return feed.Item{}, fmt.Errorf("parse element_id: %w", err)
	}

	var carrier *int
	if v, ok := m[FieldCarrier]; ok && v != "" {
		c, err := strconv.Atoi(v)
		if err != nil {
			return feed.Item{}, fmt.Errorf("parse carrier: %w", err)
		}
		carrier = &c
	}

	return feed.ReconstructItem(id, region, carrier, order, feed.ItemType(m[FieldItemType]), elementID), nil
}
