// Package index keeps the search index documents in step with the record store.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/repository/catalog"
	"github.com/kailas-cloud/feedex/internal/repository/element"
	"github.com/kailas-cloud/feedex/internal/repository/feeditem"
)

// store is the consumer interface for index maintenance.
type store interface {
	Apply(ctx context.Context, dels []string, sets []db.HashSetItem) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Change is a set of document rewrites applied in one MULTI/EXEC.
type Change struct {
	RemovedItems    []int64
	Items           []feed.Item
	RemovedElements []feed.ElementKey
	Elements        []feed.Element
}

// IsEmpty reports whether the change touches no documents.
func (c Change) IsEmpty() bool {
	return len(c.RemovedItems) == 0 && len(c.Items) == 0 && len(c.RemovedElements) == 0 && len(c.Elements) == 0
}

// Syncer writes feed item and element documents.
type Syncer struct {
	store store
}

// NewSyncer creates an index syncer.
func NewSyncer(s store) *Syncer {
	return &Syncer{store: s}
}

// Definitions returns every index feedex maintains.
func Definitions() []*db.IndexDefinition {
	return []*db.IndexDefinition{feeditem.Index(), element.Index(), catalog.Index()}
}

// EnsureIndexes creates the missing indexes.
func (s *Syncer) EnsureIndexes(ctx context.Context) error {
	for _, def := range Definitions() {
		exists, err := s.store.IndexExists(ctx, def.Name)
		if err != nil {
			return fmt.Errorf("check index %s: %w", def.Name, err)
		}
		if exists {
			continue
		}
		if err := s.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
	}
	return nil
}

// Sync applies c atomically. Written documents replace any previous version.
func (s *Syncer) Sync(ctx context.Context, c Change) error {
	if c.IsEmpty() {
		return nil
	}

	dels := make([]string, 0, len(c.RemovedItems)+len(c.RemovedElements))
	for _, id := range c.RemovedItems {
		dels = append(dels, feeditem.Key(id))
	}
	for _, k := range c.RemovedElements {
		dels = append(dels, element.Key(k))
	}

	sets, err := documents(c.Items, c.Elements)
	if err != nil {
		return err
	}
	if err := s.store.Apply(ctx, dels, sets); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}
	return nil
}

// SyncItems deletes the removed feed item documents and writes the new ones.
func (s *Syncer) SyncItems(ctx context.Context, removed []int64, written []feed.Item) error {
	return s.Sync(ctx, Change{RemovedItems: removed, Items: written})
}

// SyncElement writes the element document and deletes the removed feed items.
func (s *Syncer) SyncElement(ctx context.Context, e feed.Element, removed []int64) error {
	return s.Sync(ctx, Change{RemovedItems: removed, Elements: []feed.Element{e}})
}

// RemoveElement deletes the element document and the removed feed items.
func (s *Syncer) RemoveElement(ctx context.Context, e feed.Element, removed []int64) error {
	return s.Sync(ctx, Change{RemovedItems: removed, RemovedElements: []feed.ElementKey{e.Key()}})
}

// Rebuild rewrites every document and deletes the ones with no record behind
// them, returning how many were deleted.
func (s *Syncer) Rebuild(ctx context.Context, items []feed.Item, elements []feed.Element) (orphans int, err error) {
	sets, err := documents(items, elements)
	if err != nil {
		return 0, err
	}
	wanted := make(map[string]bool, len(sets))
	for _, set := range sets {
		wanted[set.Key] = true
	}

	var stale []string
	for _, pattern := range []string{feeditem.KeyPattern(), element.KeyPattern()} {
		keys, err := s.store.Scan(ctx, pattern)
		if err != nil {
			return 0, fmt.Errorf("scan %s: %w", pattern, err)
		}
		for _, k := range keys {
			if !wanted[k] {
				stale = append(stale, k)
			}
		}
	}

	if err := s.store.Apply(ctx, stale, sets); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	return len(stale), nil
}

func documents(items []feed.Item, elements []feed.Element) ([]db.HashSetItem, error) {
	sets := make([]db.HashSetItem, 0, len(items)+len(elements))
	for _, item := range items {
		sets = append(sets, feeditem.Doc(item))
	}
	for _, e := range elements {
		doc, err := element.Doc(e)
		if err != nil {
			return nil, err
		}
		sets = append(sets, doc)
	}
	return sets, nil
}
