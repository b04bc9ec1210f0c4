package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jask/a11ycoord/internal/device"
)

func newTestResolver(t *testing.T, kv KV, probe device.Probe, platform Platform) *Resolver {
	t.Helper()
	return NewResolver(ResolverOptions{
		Store:    NewStore(kv),
		Probe:    probe,
		Platform: platform,
		Logger:   zaptest.NewLogger(t),
	})
}

func TestEffectiveIsStoredOrDevice(t *testing.T) {
	ctx := context.Background()
	probe := device.NewStaticProbe(nil)
	r := newTestResolver(t, NewMemoryKV(), probe, PlatformIOS)

	for _, f := range AllFlags() {
		for _, stored := range []bool{false, true} {
			for _, dev := range []bool{false, true} {
				require.NoError(t, r.Update(ctx, Patch{f: stored}))
				feat, hasFeature := FeatureFor(f)
				if hasFeature {
					probe.Set(feat, dev)
				}
				want := stored || (hasFeature && dev)
				require.Equal(t, want, r.Effective(f), "flag=%s stored=%v dev=%v", f, stored, dev)
				require.Equal(t, want, r.EffectivePreferences().Get(f), "flag=%s stored=%v dev=%v", f, stored, dev)
				if hasFeature {
					probe.Set(feat, false)
				}
			}
		}
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	ctx := context.Background()
	defaults := Preferences{ScreenReaderHints: true}
	r := NewResolver(ResolverOptions{
		Store:    NewStore(NewMemoryKV()),
		Defaults: &defaults,
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, r.Update(ctx, Patch{LargeText: true, Grayscale: true, ScreenReaderHints: false}))
	require.NoError(t, r.Reset(ctx))
	if diff := cmp.Diff(defaults, r.Preferences()); diff != "" {
		t.Fatalf("preferences after reset (-want +got):\n%s", diff)
	}
}

func TestResetUsesPlatformDefaults(t *testing.T) {
	ctx := context.Background()
	for _, p := range []Platform{PlatformIOS, PlatformAndroid, PlatformWeb, PlatformDesktop} {
		t.Run(string(p), func(t *testing.T) {
			r := newTestResolver(t, NewMemoryKV(), nil, p)
			require.Equal(t, DefaultPreferences(p), r.Preferences(), "before load")
			require.NoError(t, r.Update(ctx, PatchOf(Preferences{
				LargeText: true, BoldText: true, HighContrast: true, ReduceMotion: true,
				Grayscale: true, InvertColors: true, ScreenReaderHints: false,
			})))
			require.NoError(t, r.Reset(ctx))
			require.Equal(t, DefaultPreferences(p), r.Preferences())
			require.Equal(t, DefaultPreferences(p), r.Defaults())
		})
	}
	require.True(t, DefaultPreferences(PlatformDesktop).ScreenReaderHints)
	require.Equal(t, Preferences{}, DefaultPreferences(PlatformIOS))
}

func TestUpdateNotifiesEvenWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	kv.SetFailure(errors.New("disk full"))
	r := newTestResolver(t, kv, nil, PlatformAndroid)

	var first, second []Preferences
	r.AddListener(func(p Preferences) { first = append(first, p) })
	r.AddListener(func(p Preferences) { second = append(second, p) })

	err := r.Update(ctx, Patch{ReduceMotion: true})
	require.ErrorIs(t, err, ErrPersist)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	require.True(t, first[0].ReduceMotion)
	require.True(t, second[0].ReduceMotion)
	require.True(t, r.Preferences().ReduceMotion, "in-memory value must not roll back")
}

func TestListenersRunInOrderAndSurvivePanics(t *testing.T) {
	r := newTestResolver(t, NewMemoryKV(), nil, PlatformWeb)
	var order []string
	r.AddListener(func(Preferences) { order = append(order, "a") })
	r.AddListener(func(Preferences) { panic("boom") })
	r.AddListener(func(Preferences) { order = append(order, "c") })

	require.NoError(t, r.Update(context.Background(), Patch{BoldText: true}))
	require.Equal(t, []string{"a", "c"}, order)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	r := newTestResolver(t, NewMemoryKV(), nil, PlatformWeb)
	calls := 0
	unsub := r.AddListener(func(Preferences) { calls++ })
	require.NoError(t, r.Update(context.Background(), Patch{Grayscale: true}))
	unsub()
	unsub()
	require.NoError(t, r.Update(context.Background(), Patch{Grayscale: false}))
	require.Equal(t, 1, calls)
}

func TestUpdateRejectsUnknownFlag(t *testing.T) {
	r := newTestResolver(t, NewMemoryKV(), nil, PlatformWeb)
	called := false
	r.AddListener(func(Preferences) { called = true })
	err := r.Update(context.Background(), Patch{"sparkles": true, LargeText: true})
	require.ErrorIs(t, err, ErrUnknownFlag)
	require.False(t, called)
	require.False(t, r.Preferences().LargeText)
}

func TestLoadUsesPersistedValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, StorageKey, `{"highContrast":true}`))

	r := newTestResolver(t, kv, nil, PlatformIOS)
	require.NoError(t, r.Load(ctx))
	require.Equal(t, Preferences{HighContrast: true}, r.Preferences())
}

func TestLoadCorruptRecordFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, StorageKey, `{not json`))

	r := newTestResolver(t, kv, nil, PlatformIOS)
	require.NoError(t, r.Load(ctx))
	require.Equal(t, Preferences{}, r.Preferences())
}

func TestUpdatePersists(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	r := newTestResolver(t, kv, nil, PlatformIOS)
	require.NoError(t, r.Update(ctx, Patch{InvertColors: true}))

	reloaded := newTestResolver(t, kv, nil, PlatformIOS)
	require.NoError(t, reloaded.Load(ctx))
	require.True(t, reloaded.Preferences().InvertColors)
}

func TestDeviceQueriesBypassStoredPreferences(t *testing.T) {
	probe := device.NewStaticProbe(device.State{device.ScreenReader: true, device.ReduceMotion: true})
	r := newTestResolver(t, NewMemoryKV(), probe, PlatformIOS)

	require.True(t, r.IsScreenReaderActive())
	require.True(t, r.IsReduceMotionActive())
	require.False(t, r.IsBoldTextActive())
	require.False(t, r.IsHighContrastActive())
	require.False(t, r.IsGrayscaleActive())
	require.False(t, r.IsInvertColorsActive())
	require.False(t, r.Preferences().ReduceMotion)
}

func TestNotifyDeviceChangedResendsStoredSet(t *testing.T) {
	r := newTestResolver(t, NewMemoryKV(), nil, PlatformIOS)
	var got []Preferences
	r.AddListener(func(p Preferences) { got = append(got, p) })
	r.NotifyDeviceChanged()
	require.Equal(t, []Preferences{{}}, got)
}
