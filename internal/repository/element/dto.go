package element

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/market"
)

// Doc converts a stored element into its index document.
func Doc(e feed.Element) (db.HashSetItem, error) {
	fields, err := buildHashFields(e)
	if err != nil {
		return db.HashSetItem{}, err
	}
	return db.HashSetItem{Key: Key(e.Key()), Fields: fields}, nil
}

func buildHashFields(e feed.Element) (map[string]string, error) {
	body, err := feed.EncodeContent(e.Content())
	if err != nil {
		return nil, fmt.Errorf("encode element %s: %w", e.Key(), err)
	}

	m := map[string]string{
		FieldID:          strconv.FormatInt(e.ID(), 10),
		FieldItemType:    string(e.ItemType()),
		FieldSlug:        e.Slug(),
		FieldType:        e.Type(),
		FieldSearchNames: e.SearchNames(),
		FieldCreated:     strconv.FormatInt(e.Created().UnixMilli(), 10),
		FieldAppCount:    strconv.Itoa(e.AppCount()),
		fieldDoc:         string(body),
	}
	if shelf, ok := e.Content().(feed.ShelfContent); ok {
		if c, ok := market.CarrierByID(shelf.Carrier); ok {
			m[FieldCarrier] = c.Slug()
		}
		if r, ok := market.RegionByID(shelf.Region); ok {
			m[FieldRegion] = r.Slug()
		}
	}
	return m, nil
}

func parseHashFields(m map[string]string) (feed.Element, error) {
	id, err := strconv.ParseInt(m[FieldID], 10, 64)
	if err != nil {
		return feed.Element{}, fmt.Errorf("parse id: %w", err)
	}
	t, err := feed.ParseItemType(m[FieldItemType])
	if err != nil {
		return feed.Element{}, err
	}

	var created time.Time
	if v := m[FieldCreated]; v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return feed.Element{}, fmt.Errorf("parse created: %w", err)
		}
		created = time.UnixMilli(ms).UTC()
	}

	content, err := feed.DecodeContent(t, []byte(m[fieldDoc]))
	if err != nil {
		return feed.Element{}, err
	}
	return feed.ReconstructElement(id, m[FieldSlug], m[FieldType], created, content), nil
}
