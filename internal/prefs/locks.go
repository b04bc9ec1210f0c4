package prefs

import (
	"strings"

	"github.com/jask/a11ycoord/internal/device"
)

// Platform identifies the host OS family for lock and default decisions.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
	PlatformDesktop Platform = "desktop"
)

func ParsePlatform(s string) Platform {
	return Platform(strings.ToLower(strings.TrimSpace(s)))
}

// deviceFeature maps each user flag to the OS feature that can enforce it.
// largeText has no OS counterpart the app can query.
var deviceFeature = map[Flag]device.Feature{
	BoldText:          device.BoldText,
	HighContrast:      device.HighContrast,
	ReduceMotion:      device.ReduceMotion,
	Grayscale:         device.Grayscale,
	InvertColors:      device.InvertColors,
	ScreenReaderHints: device.ScreenReader,
}

// FeatureFor returns the OS feature backing f, if any.
func FeatureFor(f Flag) (device.Feature, bool) {
	feat, ok := deviceFeature[f]
	return feat, ok
}

// LockTable says, per platform and flag, whether an OS-enforced feature
// disables the in-app toggle. Platforms missing from the table lock nothing.
type LockTable map[Platform]map[Flag]bool

// DefaultLockTable reflects what each platform's settings APIs allow: iOS
// offers no in-app override for bold text, contrast, grayscale or inversion,
// but reduce motion stays editable.
func DefaultLockTable() LockTable {
	return LockTable{
		PlatformIOS: {
			BoldText:     true,
			HighContrast: true,
			Grayscale:    true,
			InvertColors: true,
		},
		PlatformAndroid: {},
	}
}

// DefaultPreferences is the set a platform starts from and Reset restores.
// Only desktop differs from all-off: a terminal cannot ask the OS whether a
// screen reader is running, so spoken hints start enabled there.
func DefaultPreferences(p Platform) Preferences {
	switch p {
	case PlatformDesktop:
		return Preferences{ScreenReaderHints: true}
	default:
		return Preferences{}
	}
}

func (t LockTable) Locked(p Platform, f Flag) bool {
	return t[p][f]
}

// WithPlatform returns a copy of t where p locks exactly flags.
func (t LockTable) WithPlatform(p Platform, flags []Flag) LockTable {
	out := make(LockTable, len(t)+1)
	for k, v := range t {
		row := make(map[Flag]bool, len(v))
		for f, on := range v {
			row[f] = on
		}
		out[k] = row
	}
	row := make(map[Flag]bool, len(flags))
	for _, f := range flags {
		row[f] = true
	}
	out[p] = row
	return out
}

// ToggleState is what a settings toggle should display.
type ToggleState struct {
	Flag           Flag
	Value          bool
	DeviceEnforced bool
	Locked         bool
}

// toggleFor applies the display policy: the value is stored OR device, and
// the control is locked only when the OS enforces it and the platform has no
// in-app override for that flag.
func toggleFor(f Flag, stored bool, dev device.State, p Platform, locks LockTable) ToggleState {
	enforced := false
	if feat, ok := deviceFeature[f]; ok {
		enforced = dev[feat]
	}
	return ToggleState{
		Flag:           f,
		Value:          stored || enforced,
		DeviceEnforced: enforced,
		Locked:         enforced && locks.Locked(p, f),
	}
}
