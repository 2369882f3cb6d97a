// Package builder replaces the carrier-agnostic feed of whole regions.
package builder

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/feedex/internal/domain"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/market"
)

// PairMessage is returned when a placement is not an [item_type, id] pair.
const PairMessage = "Expected two-element arrays."

// Payload maps region slugs to ordered [item_type, id] placements.
type Payload map[string][][]string

// Service applies builder payloads.
type Service struct {
	records Records
	index   Indexer
}

// New creates a builder service.
func New(records Records, index Indexer) *Service {
	return &Service{records: records, index: index}
}

// Replace swaps the carrier-agnostic items of every region in p for the
// given placements. Regions absent from p and carrier items are untouched.
// Nothing is written unless every placement is valid and every element exists.
func (s *Service) Replace(ctx context.Context, p Payload) error {
	plan, keys, err := Plan(p)
	if err != nil {
		return err
	}

	missing, err := s.records.MissingElements(ctx, keys)
	if err != nil {
		return fmt.Errorf("check elements: %w", err)
	}
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, k := range missing {
			names[i] = k.String()
		}
		return domain.NewValidation(domain.ErrElementNotFound, "unknown elements: %s", strings.Join(names, ", "))
	}

	if err := s.records.ReplaceRegions(ctx, plan, s.index.SyncItems); err != nil {
		return fmt.Errorf("replace %d regions: %w", len(plan), err)
	}
	return nil
}

// Plan validates p and converts it into per-region items, returning the
// distinct referenced element keys in first-seen order.
func Plan(p Payload) (map[int][]domfeed.Item, []domfeed.ElementKey, error) {
	slugs := make([]string, 0, len(p))
	for slug := range p {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	plan := make(map[int][]domfeed.Item, len(p))
	seen := make(map[domfeed.ElementKey]bool)
	var keys []domfeed.ElementKey
	for _, slug := range slugs {
		region, err := market.RegionBySlug(slug)
		if err != nil {
			return nil, nil, err
		}
		items := make([]domfeed.Item, 0, len(p[slug]))
		for order, pair := range p[slug] {
			item, err := placement(region.ID(), order, pair)
			if err != nil {
				return nil, nil, err
			}
			items = append(items, item)
			if k := item.ElementKey(); !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		plan[region.ID()] = items
	}
	return plan, keys, nil
}

func placement(region, order int, pair []string) (domfeed.Item, error) {
	if len(pair) != 2 {
		return domfeed.Item{}, domain.NewValidation(domain.ErrInvalidPayload, PairMessage)
	}
	t, err := domfeed.ParseItemType(pair[0])
	if err != nil {
		return domfeed.Item{}, err
	}
	id, err := strconv.ParseInt(pair[1], 10, 64)
	if err != nil || id <= 0 {
		return domfeed.Item{}, domain.NewValidation(domain.ErrInvalidPayload, "invalid %s id %q", t, pair[1])
	}
	item, err := domfeed.NewItem(region, nil, order, t, id)
	if err != nil {
		return domfeed.Item{}, domain.NewValidation(domain.ErrInvalidPayload, "%s", err.Error())
	}
	return item, nil
}
