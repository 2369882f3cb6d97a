// Package reindex rebuilds the search index from the record store.
package reindex

import (
	"context"
	"fmt"
	"sync"
	"time"

	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
)

// Stats summarizes one rebuild.
type Stats struct {
	Items    int
	Elements int
	Orphans  int
	Duration time.Duration
}

// Service runs full index rebuilds, one at a time.
type Service struct {
	records Records
	index   Indexer
	mu      sync.Mutex
	now     func() time.Time
}

// New creates a reindex service.
func New(records Records, index Indexer) *Service {
	return &Service{records: records, index: index, now: time.Now}
}

// Reindex writes every stored item and element to the index and deletes
// documents with no record behind them. Record writes wait until the
// rebuilt index is in place.
func (s *Service) Reindex(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	var stats Stats
	err := s.records.Snapshot(ctx, func(ctx context.Context, items []domfeed.Item, elements []domfeed.Element) error {
		orphans, err := s.index.Rebuild(ctx, items, elements)
		if err != nil {
			return fmt.Errorf("rebuild: %w", err)
		}
		stats = Stats{Items: len(items), Elements: len(elements), Orphans: orphans}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("reindex: %w", err)
	}
	stats.Duration = s.now().Sub(start)
	return stats, nil
}
