package market

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/feedex/internal/domain"
)

func TestRegionBySlug(t *testing.T) {
	r, err := RegionBySlug("br")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != 7 || r.Slug() != "br" {
		t.Errorf("got %d/%s", r.ID(), r.Slug())
	}
	if r.IsRestOfWorld() {
		t.Error("br is not rest of world")
	}

	_, err = RegionBySlug("atlantis")
	if !errors.Is(err, domain.ErrInvalidRegion) {
		t.Errorf("expected ErrInvalidRegion, got %v", err)
	}
}

func TestRestOfWorld(t *testing.T) {
	r, ok := RegionByID(1)
	if !ok || !r.IsRestOfWorld() {
		t.Fatal("region 1 must be rest of world")
	}
	if r.Slug() != "restofworld" {
		t.Errorf("slug = %q", r.Slug())
	}
}

func TestRegions_UniqueIDsAndSlugs(t *testing.T) {
	ids := make(map[int]bool)
	slugs := make(map[string]bool)
	for _, r := range Regions() {
		if ids[r.ID()] || slugs[r.Slug()] {
			t.Errorf("duplicate region %d/%s", r.ID(), r.Slug())
		}
		ids[r.ID()] = true
		slugs[r.Slug()] = true
	}
}

func TestCarrierBySlug(t *testing.T) {
	c, err := CarrierBySlug("telefonica")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID() != 1 {
		t.Errorf("id = %d", c.ID())
	}
	if back, ok := CarrierByID(c.ID()); !ok || back.Slug() != "telefonica" {
		t.Error("CarrierByID round trip failed")
	}

	_, err = CarrierBySlug("nope")
	if !errors.Is(err, domain.ErrInvalidCarrier) {
		t.Errorf("expected ErrInvalidCarrier, got %v", err)
	}
}
