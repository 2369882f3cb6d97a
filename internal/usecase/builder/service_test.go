package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/feedex/internal/domain"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
)

type mockRecords struct {
	missingFn func(ctx context.Context, keys []domfeed.ElementKey) ([]domfeed.ElementKey, error)
	replaceFn func(
		ctx context.Context, plan map[int][]domfeed.Item,
		sync func(ctx context.Context, removed []int64, written []domfeed.Item) error,
	) error
	replaceCalls int
}

func (m *mockRecords) MissingElements(ctx context.Context, keys []domfeed.ElementKey) ([]domfeed.ElementKey, error) {
	if m.missingFn != nil {
		return m.missingFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockRecords) ReplaceRegions(
	ctx context.Context, plan map[int][]domfeed.Item,
	sync func(ctx context.Context, removed []int64, written []domfeed.Item) error,
) error {
	m.replaceCalls++
	if m.replaceFn != nil {
		return m.replaceFn(ctx, plan, sync)
	}
	return nil
}

type mockIndexer struct {
	written []domfeed.Item
}

func (m *mockIndexer) SyncItems(_ context.Context, _ []int64, written []domfeed.Item) error {
	m.written = append(m.written, written...)
	return nil
}

func TestReplace_PlansOrderedItems(t *testing.T) {
	records := &mockRecords{}
	index := &mockIndexer{}
	records.replaceFn = func(
		ctx context.Context, plan map[int][]domfeed.Item,
		sync func(ctx context.Context, removed []int64, written []domfeed.Item) error,
	) error {
		us := plan[2]
		if len(plan) != 2 || len(us) != 3 {
			t.Fatalf("plan = %+v", plan)
		}
		for i, item := range us {
			if item.Order() != i || item.Carrier() != nil || item.Region() != 2 {
				t.Errorf("item %d = %+v", i, item)
			}
		}
		if us[2].ElementKey() != (domfeed.ElementKey{Type: domfeed.TypeCollection, ID: 12}) {
			t.Errorf("last us item = %v", us[2].ElementKey())
		}
		return sync(ctx, nil, us)
	}

	err := New(records, index).Replace(context.Background(), Payload{
		"us": {{"app", "36"}, {"app", "42"}, {"collection", "12"}},
		"br": {{"brand", "12"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(index.written) != 3 {
		t.Errorf("synced %d items, want 3", len(index.written))
	}
}

func TestReplace_EmptyRegionClearsIt(t *testing.T) {
	records := &mockRecords{}
	records.replaceFn = func(
		_ context.Context, plan map[int][]domfeed.Item,
		_ func(ctx context.Context, removed []int64, written []domfeed.Item) error,
	) error {
		items, ok := plan[7]
		if !ok || len(items) != 0 {
			t.Errorf("plan = %+v", plan)
		}
		return nil
	}
	if err := New(records, &mockIndexer{}).Replace(context.Background(), Payload{"br": {}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReplace_ValidationBeforeAnyWrite(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    error
	}{
		{"short pair", Payload{"us": {{"app"}}}, domain.ErrInvalidPayload},
		{"long pair", Payload{"us": {{"app", "1", "x"}}}, domain.ErrInvalidPayload},
		{"unknown region", Payload{"atlantis": {{"app", "1"}}}, domain.ErrInvalidRegion},
		{"unknown type", Payload{"us": {{"video", "1"}}}, domain.ErrInvalidItemType},
		{"zero id", Payload{"us": {{"app", "0"}}}, domain.ErrInvalidPayload},
		{"non-numeric id", Payload{"us": {{"app", "abc"}}}, domain.ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := &mockRecords{}
			records.missingFn = func(context.Context, []domfeed.ElementKey) ([]domfeed.ElementKey, error) {
				t.Fatal("record store must not be called")
				return nil, nil
			}
			err := New(records, &mockIndexer{}).Replace(context.Background(), tt.payload)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReplace_PairMessage(t *testing.T) {
	err := New(&mockRecords{}, &mockIndexer{}).Replace(context.Background(), Payload{"us": {{"app"}}})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Message != PairMessage {
		t.Errorf("got %v", err)
	}
}

func TestReplace_MissingElementChangesNothing(t *testing.T) {
	records := &mockRecords{}
	records.missingFn = func(_ context.Context, keys []domfeed.ElementKey) ([]domfeed.ElementKey, error) {
		if len(keys) != 2 {
			t.Errorf("keys = %v, want duplicates collapsed", keys)
		}
		return []domfeed.ElementKey{{Type: domfeed.TypeApp, ID: 99}}, nil
	}

	err := New(records, &mockIndexer{}).Replace(context.Background(), Payload{
		"us": {{"app", "1"}, {"app", "99"}, {"app", "1"}},
	})
	if !errors.Is(err, domain.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
	if records.replaceCalls != 0 {
		t.Errorf("ReplaceRegions called %d times", records.replaceCalls)
	}
}

func TestReplace_StoreError(t *testing.T) {
	records := &mockRecords{}
	records.replaceFn = func(
		context.Context, map[int][]domfeed.Item,
		func(ctx context.Context, removed []int64, written []domfeed.Item) error,
	) error {
		return errors.New("deadlock")
	}
	if err := New(records, &mockIndexer{}).Replace(context.Background(), Payload{"us": {{"app", "1"}}}); err == nil {
		t.Error("expected error")
	}
}
