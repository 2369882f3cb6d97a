// Package device resolves client dev/device tokens to catalog device types.
package device

import "github.com/kailas-cloud/feedex/internal/domain"

// Type is a catalog device type id.
type Type int

const (
	// Desktop is a desktop browser.
	Desktop Type = 1
	// AndroidMobile is an Android phone.
	AndroidMobile Type = 2
	// AndroidTablet is an Android tablet.
	AndroidTablet Type = 3
	// FirefoxOS is a Firefox OS handset.
	FirefoxOS Type = 4
)

var lookup = map[string]Type{
	"desktop":        Desktop,
	"android-mobile": AndroidMobile,
	"android-tablet": AndroidTablet,
	"firefoxos":      FirefoxOS,
}

var names = map[Type]string{
	Desktop:       "desktop",
	AndroidMobile: "android-mobile",
	AndroidTablet: "android-tablet",
	FirefoxOS:     "firefoxos",
}

// String returns the lookup key of t.
func (t Type) String() string { return names[t] }

var (
	families  = map[string]bool{"desktop": true, "android": true, "firefoxos": true}
	qualifier = map[string]bool{"mobile": true, "tablet": true}
)

// Key combines a device family and a type qualifier into a lookup key.
// The qualifier only applies to android.
func Key(dev, deviceType string) string {
	if dev == "android" && deviceType != "" {
		return dev + "-" + deviceType
	}
	return dev
}

// Lookup resolves a composite key. Unknown keys resolve to no constraint.
func Lookup(key string) (Type, bool) {
	t, ok := lookup[key]
	return t, ok
}

// Resolve validates the tokens and resolves them against the device table.
// Tokens outside the accepted choices are rejected; a valid combination
// missing from the table (e.g. bare "android") means no device constraint.
func Resolve(dev, deviceType string) (Type, bool, error) {
	if dev != "" && !families[dev] {
		return 0, false, domain.NewValidation(domain.ErrInvalidDevice, "unknown dev %q", dev)
	}
	if deviceType != "" && !qualifier[deviceType] {
		return 0, false, domain.NewValidation(domain.ErrInvalidDevice, "unknown device %q", deviceType)
	}
	t, ok := Lookup(Key(dev, deviceType))
	return t, ok, nil
}
