// Package catalog accepts app documents from the external catalog sync.
package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/app"
	"github.com/kailas-cloud/feedex/internal/domain/device"
	"github.com/kailas-cloud/feedex/internal/domain/market"
)

// MaxBatch bounds one upsert request.
const MaxBatch = 500

// Repository stores app documents.
type Repository interface {
	Upsert(ctx context.Context, apps []app.App) error
}

// Input is one app as sent by the catalog sync. Devices are device keys
// (e.g. "android-mobile"); ExcludedRegions are region slugs.
type Input struct {
	ID              int64
	Slug            string
	Name            string
	Status          string
	Devices         []string
	ExcludedRegions []string
	IconURL         string
}

// Service validates and stores catalog apps.
type Service struct {
	repo Repository
}

// New creates a catalog service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Upsert validates every input and writes them in one batch.
// Nothing is written when any input is invalid.
func (s *Service) Upsert(ctx context.Context, in []Input) (int, error) {
	if len(in) == 0 {
		return 0, domain.NewValidation(domain.ErrInvalidPayload, "no apps given")
	}
	if len(in) > MaxBatch {
		return 0, domain.NewValidation(domain.ErrInvalidPayload, "at most %d apps per request", MaxBatch)
	}

	apps := make([]app.App, len(in))
	for i, v := range in {
		a, err := toApp(v)
		if err != nil {
			return 0, domain.NewValidation(domain.ErrInvalidPayload, "apps[%d]: %s", i, err.Error())
		}
		apps[i] = a
	}

	if err := s.repo.Upsert(ctx, apps); err != nil {
		return 0, fmt.Errorf("upsert catalog: %w", err)
	}
	return len(apps), nil
}

func toApp(v Input) (app.App, error) {
	devices := make([]device.Type, 0, len(v.Devices))
	for _, key := range v.Devices {
		t, ok := device.Lookup(key)
		if !ok {
			return app.App{}, fmt.Errorf("unknown device %q", key)
		}
		devices = append(devices, t)
	}

	regions := make([]int, 0, len(v.ExcludedRegions))
	for _, slug := range v.ExcludedRegions {
		r, err := market.RegionBySlug(slug)
		if err != nil {
			return app.App{}, fmt.Errorf("unknown region %q", slug)
		}
		regions = append(regions, r.ID())
	}

	return app.New(v.ID, v.Slug, v.Name, app.Status(v.Status), devices, regions, v.IconURL)
}
