// Package voice maps spoken phrases to handlers. Utterances arrive as text
// from an external speech engine; matching is exact after normalization,
// with an optional edit-distance fallback.
package voice

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

type Binding struct {
	Phrase      string
	Handler     func()
	Description string
}

// Disposer removes exactly the registration that returned it. Calling it
// more than once is harmless.
type Disposer func()

type entry struct {
	binding Binding
	token   string
}

type Registry struct {
	mu       sync.Mutex
	bindings map[string]entry
	fuzzy    int
	logger   *zap.Logger
}

type Option func(*Registry)

// WithFuzzy enables an edit-distance fallback: when no phrase matches
// exactly, the single closest phrase within maxDistance edits is used.
func WithFuzzy(maxDistance int) Option {
	return func(r *Registry) { r.fuzzy = maxDistance }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{bindings: map[string]entry{}, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Normalize applies full Unicode case folding, trims and collapses internal
// whitespace.
func Normalize(s string) string {
	return strings.Join(strings.FieldsFunc(cases.Fold().String(s), unicode.IsSpace), " ")
}

// Register stores b under its normalized phrase, replacing any earlier
// binding with the same key.
func (r *Registry) Register(b Binding) Disposer {
	key := Normalize(b.Phrase)
	if key == "" || b.Handler == nil {
		r.logger.Warn("voice command ignored", zap.String("phrase", b.Phrase), zap.Bool("handler", b.Handler != nil))
		return func() {}
	}
	tok := uuid.NewString()
	r.mu.Lock()
	_, replaced := r.bindings[key]
	r.bindings[key] = entry{binding: b, token: tok}
	r.mu.Unlock()
	if replaced {
		r.logger.Debug("voice command replaced", zap.String("phrase", key))
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if e, ok := r.bindings[key]; ok && e.token == tok {
			delete(r.bindings, key)
		}
	}
}

// Dispatch runs the handler bound to utterance. Unmatched speech returns
// false; it is not an error.
func (r *Registry) Dispatch(utterance string) bool {
	key := Normalize(utterance)
	if key == "" {
		return false
	}
	r.mu.Lock()
	e, ok := r.bindings[key]
	if !ok && r.fuzzy > 0 {
		e, ok = r.closestLocked(key)
	}
	r.mu.Unlock()
	if !ok {
		r.logger.Debug("voice command not recognized", zap.String("utterance", key))
		return false
	}
	r.invoke(key, e.binding)
	return true
}

func (r *Registry) closestLocked(key string) (entry, bool) {
	best, bestDist, tie := entry{}, r.fuzzy+1, false
	for phrase, e := range r.bindings {
		d := levenshtein.ComputeDistance(key, phrase)
		switch {
		case d < bestDist:
			best, bestDist, tie = e, d, false
		case d == bestDist:
			tie = true
		}
	}
	if bestDist > r.fuzzy || tie {
		return entry{}, false
	}
	return best, true
}

func (r *Registry) invoke(key string, b Binding) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("voice handler panicked", zap.String("phrase", key), zap.Any("panic", rec))
		}
	}()
	b.Handler()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bindings)
}

func (r *Registry) Clear() {
	r.mu.Lock()
	r.bindings = map[string]entry{}
	r.mu.Unlock()
}

// CommandInfo is one row of the "what can I say" listing.
type CommandInfo struct {
	Phrase      string
	Description string
}

// Commands lists bindings whose phrase or description contains query,
// sorted by phrase. An empty query lists everything.
func (r *Registry) Commands(query string) []CommandInfo {
	q := Normalize(query)
	r.mu.Lock()
	out := make([]CommandInfo, 0, len(r.bindings))
	for phrase, e := range r.bindings {
		if q != "" && !strings.Contains(phrase+" "+Normalize(e.binding.Description), q) {
			continue
		}
		out = append(out, CommandInfo{Phrase: phrase, Description: e.binding.Description})
	}
	r.mu.Unlock()
	slices.SortFunc(out, func(a, b CommandInfo) int { return cmp.Compare(a.Phrase, b.Phrase) })
	return out
}
