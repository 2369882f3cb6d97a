// Package app models catalog apps as read by the feed. The catalog owns them.
package app

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/kailas-cloud/feedex/internal/domain/device"
)

// Status is the catalog review status of an app.
type Status string

const (
	// StatusPublic apps are visible in feeds.
	StatusPublic Status = "public"
	// StatusPending apps await review.
	StatusPending Status = "pending"
	// StatusDisabled apps are hidden everywhere.
	StatusDisabled Status = "disabled"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusPublic || s == StatusPending || s == StatusDisabled
}

// App is a catalog app (immutable value object).
type App struct {
	id              int64
	slug            string
	name            string
	status          Status
	devices         []device.Type
	excludedRegions []int
	iconURL         string
}

// New validates and creates an App.
func New(id int64, slug, name string, status Status, devices []device.Type, excludedRegions []int, iconURL string) (App, error) {
	if id <= 0 {
		return App{}, fmt.Errorf("app id must be positive")
	}
	if slug == "" {
		return App{}, fmt.Errorf("app slug is required")
	}
	if !status.IsValid() {
		return App{}, fmt.Errorf("unknown app status %q", status)
	}
	return Reconstruct(id, slug, name, status, slices.Clone(devices), slices.Clone(excludedRegions), iconURL), nil
}

// Reconstruct creates an App without validation (storage hydration).
func Reconstruct(id int64, slug, name string, status Status, devices []device.Type, excludedRegions []int, iconURL string) App {
	return App{
		id:              id,
		slug:            slug,
		name:            name,
		status:          status,
		devices:         devices,
		excludedRegions: excludedRegions,
		iconURL:         iconURL,
	}
}

// ID returns the catalog id.
func (a App) ID() int64 { return a.id }

// Slug returns the app slug.
func (a App) Slug() string { return a.slug }

// Name returns the display name.
func (a App) Name() string { return a.name }

// Status returns the review status.
func (a App) Status() Status { return a.status }

// Devices returns the compatible device types.
func (a App) Devices() []device.Type { return a.devices }

// ExcludedRegions returns ids of regions the app is unavailable in.
func (a App) ExcludedRegions() []int { return a.excludedRegions }

// IconURL returns the icon location.
func (a App) IconURL() string { return a.iconURL }

// Eligible reports whether the app may be shown for the given device and region.
// A zero device means no device constraint.
func (a App) Eligible(dev device.Type, region int) bool {
	if a.status != StatusPublic {
		return false
	}
	if dev != 0 && !slices.Contains(a.devices, dev) {
		return false
	}
	return !slices.Contains(a.excludedRegions, region)
}

// FormatID renders an app id the way indexes store it.
func FormatID(id int64) string { return strconv.FormatInt(id, 10) }
