package voice

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	return NewRegistry(append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...)
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Subscribe Now":       "subscribe now",
		"  subscribe   now  ": "subscribe now",
		"SUBSCRIBE\tNOW\n":    "subscribe now",
		"":                    "",
		"   ":                 "",
	}
	for in, want := range cases {
		require.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeFoldsUnicodeCase(t *testing.T) {
	require.Equal(t, Normalize("οδος"), Normalize("ΟΔΟΣ"))
	require.Equal(t, Normalize("straße"), Normalize("STRASSE"))

	r := newRegistry(t)
	hits := 0
	r.Register(Binding{Phrase: "ΟΔΟΣ", Handler: func() { hits++ }})
	r.Register(Binding{Phrase: "STRASSE", Handler: func() { hits++ }})
	require.True(t, r.Dispatch("οδος"))
	require.True(t, r.Dispatch("straße"))
	require.Equal(t, 2, hits)
}

func TestVariantPhrasesCollide(t *testing.T) {
	r := newRegistry(t)
	var hits []string
	r.Register(Binding{Phrase: "Subscribe Now", Handler: func() { hits = append(hits, "first") }})
	r.Register(Binding{Phrase: "subscribe   now", Handler: func() { hits = append(hits, "second") }})

	require.Equal(t, 1, r.Len())
	require.True(t, r.Dispatch("SUBSCRIBE NOW"))
	require.Equal(t, []string{"second"}, hits)
}

func TestUnmatchedIsNotAnError(t *testing.T) {
	r := newRegistry(t)
	r.Register(Binding{Phrase: "go home", Handler: func() {}})
	require.False(t, r.Dispatch("open the pod bay doors"))
	require.False(t, r.Dispatch("   "))
}

func TestDisposerRemovesByIdentity(t *testing.T) {
	r := newRegistry(t)
	var hits []string

	disposeFirst := r.Register(Binding{Phrase: "cancel", Handler: func() { hits = append(hits, "first") }})
	disposeFirst()
	r.Register(Binding{Phrase: "cancel", Handler: func() { hits = append(hits, "second") }})
	disposeFirst()

	require.True(t, r.Dispatch("cancel"))
	require.Equal(t, []string{"second"}, hits)
}

func TestStaleDisposerDuringRemountRace(t *testing.T) {
	r := newRegistry(t)
	hits := 0
	oldScreen := r.Register(Binding{Phrase: "cancel", Handler: func() {}})
	r.Register(Binding{Phrase: "Cancel", Handler: func() { hits++ }})

	oldScreen()
	require.True(t, r.Dispatch("cancel"))
	require.Equal(t, 1, hits)
}

func TestInvalidBindingsAreIgnored(t *testing.T) {
	r := newRegistry(t)
	r.Register(Binding{Phrase: "  ", Handler: func() {}})
	r.Register(Binding{Phrase: "help"})
	require.Zero(t, r.Len())
}

func TestPanickingHandlerStillCountsAsHandled(t *testing.T) {
	r := newRegistry(t)
	r.Register(Binding{Phrase: "explode", Handler: func() { panic("nope") }})
	require.NotPanics(t, func() { require.True(t, r.Dispatch("explode")) })
}

func TestFuzzyFallbackKeepsExactFastPath(t *testing.T) {
	r := newRegistry(t, WithFuzzy(2))
	var hits []string
	r.Register(Binding{Phrase: "next", Handler: func() { hits = append(hits, "next") }})
	r.Register(Binding{Phrase: "nest", Handler: func() { hits = append(hits, "nest") }})
	r.Register(Binding{Phrase: "subscribe now", Handler: func() { hits = append(hits, "subscribe") }})

	require.True(t, r.Dispatch("nest"), "exact match wins even with a close neighbour")
	require.True(t, r.Dispatch("subscrib now"))
	require.False(t, r.Dispatch("neat"), "tie between next and nest is ambiguous")
	require.False(t, r.Dispatch("unsubscribe later"))
	require.Equal(t, []string{"nest", "subscribe"}, hits)
}

func TestFuzzyDisabledByDefault(t *testing.T) {
	r := newRegistry(t)
	r.Register(Binding{Phrase: "subscribe now", Handler: func() {}})
	require.False(t, r.Dispatch("subscrib now"))
}

func TestCommandsListing(t *testing.T) {
	r := newRegistry(t)
	r.Register(Binding{Phrase: "Open Settings", Description: "show accessibility settings", Handler: func() {}})
	r.Register(Binding{Phrase: "go back", Description: "return to previous screen", Handler: func() {}})

	all := r.Commands("")
	require.Equal(t, []CommandInfo{
		{Phrase: "go back", Description: "return to previous screen"},
		{Phrase: "open settings", Description: "show accessibility settings"},
	}, all)

	require.Len(t, r.Commands("ACCESSIBILITY"), 1)
	require.Empty(t, r.Commands("payments"))
}

func TestClear(t *testing.T) {
	r := newRegistry(t)
	dispose := r.Register(Binding{Phrase: "a", Handler: func() {}})
	r.Clear()
	require.Zero(t, r.Len())
	require.NotPanics(t, func() { dispose() })
}
